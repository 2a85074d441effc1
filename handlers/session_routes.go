// handlers/session_routes.go
package handlers

import (
	"errors"

	"edu-game-system/middleware"
	"edu-game-system/services"

	"github.com/gofiber/fiber/v2"
)

// engineErrorStatus maps the engine's sentinel errors onto HTTP statuses.
// Anything unrecognized is a 500 (transient storage errors included — the
// gateway owns retry policy).
func engineErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrSchoolNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrStaleAttempt):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrProgressLocked):
		return fiber.StatusLocked
	case errors.Is(err, services.ErrInvalidOutcome):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func SetupSessionRoutes(app *fiber.App, sessionService *services.SessionService, leaderboardService *services.LeaderboardService, directoryService *services.DirectoryService) {
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	// The caller's mirrored identity: display name, school, avatar. 404
	// until the directory sync has seen the player.
	securedGroup.Get("/session/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		player, err := directoryService.GetPlayer(userID)
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to get profile",
				"cause": err.Error(),
			})
		}
		return c.JSON(player)
	})

	// Reports one try's outcome for the caller's current level.
	securedGroup.Post("/session/outcome", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			GameID         string  `json:"game_id"`
			Outcome        string  `json:"outcome"` // success | failed
			ElapsedSeconds float64 `json:"elapsed_seconds"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.GameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "game_id is required",
			})
		}

		record, progress, err := sessionService.ReportOutcome(userID, req.GameID, req.Outcome, req.ElapsedSeconds)
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to report outcome",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"record":   record,
			"progress": progress,
		})
	})

	// Get-or-init today's progress for the caller. ?start= seeds the level
	// pointer on the day's first call only.
	securedGroup.Get("/session/progress/:gameID", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		progress, err := sessionService.GetProgressStartingAt(userID, c.Params("gameID"), c.QueryInt("start", 1))
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to get progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(progress)
	})

	// Score preview: runs the normalizer against a game's config without
	// touching session state.
	securedGroup.Post("/score/preview", func(c *fiber.Ctx) error {
		type Req struct {
			GameID string `json:"game_id"`
			services.RawScore
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		score, err := sessionService.ComputeScore(req.RawScore, req.GameID)
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to compute score",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"score": score})
	})

	// Today's ranking for a game; ?school_id= narrows to one school's
	// sub-list.
	securedGroup.Get("/leaderboard/:gameID", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")

		if schoolID := c.Query("school_id"); schoolID != "" {
			sub, err := leaderboardService.GetSchoolLeaderboard(gameID, schoolID)
			if err != nil {
				return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
					"error": "failed to get leaderboard",
					"cause": err.Error(),
				})
			}
			return c.JSON(fiber.Map{
				"game_id":     gameID,
				"school_id":   schoolID,
				"leaderboard": sub,
			})
		}

		board, err := leaderboardService.GetDailyLeaderboard(gameID)
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to get leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(board)
	})
}
