// handlers/game.go
package handlers

import (
	"path/filepath"
	"strconv"

	"edu-game-system/middleware"
	"edu-game-system/models"
	"edu-game-system/services"
	"edu-game-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SetupCatalogRoutes wires the admin catalog CRUD. Logo images go to R2;
// everything else is plain row editing.
func SetupCatalogRoutes(app *fiber.App, catalogService *services.CatalogService) {
	adminGroup := app.Group("/admin", middleware.UserContextMiddleware(), middleware.AdminOnlyMiddleware())

	adminGroup.Post("/games", func(c *fiber.Ctx) error {
		game := &models.Game{
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			Status:      c.FormValue("status"),
		}
		if game.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		game.MaxLevel, _ = strconv.Atoi(c.FormValue("max_level"))
		game.MaxRetry, _ = strconv.Atoi(c.FormValue("max_retry"))
		game.MaxTime, _ = strconv.Atoi(c.FormValue("max_time"))

		// Optional logo → R2 (small, public asset)
		if logoFile, err := c.FormFile("logo"); err == nil && logoFile.Size > 0 {
			logoExt := filepath.Ext(logoFile.Filename)
			if logoExt == "" {
				logoExt = ".png"
			}
			logoKey := "logos/" + uuid.NewString() + logoExt
			logoURL, err := utils.UploadFileToR2(logoFile, logoKey)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to upload logo",
					"cause": err.Error(),
				})
			}
			game.LogoURL = logoURL
		}

		if err := catalogService.CreateGame(game); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create game",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(game)
	})

	adminGroup.Put("/games/:id", func(c *fiber.Ctx) error {
		updates := &models.Game{
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			Status:      c.FormValue("status"),
		}
		updates.MaxLevel, _ = strconv.Atoi(c.FormValue("max_level"))
		updates.MaxRetry, _ = strconv.Atoi(c.FormValue("max_retry"))
		updates.MaxTime, _ = strconv.Atoi(c.FormValue("max_time"))

		if logoFile, err := c.FormFile("logo"); err == nil && logoFile.Size > 0 {
			logoExt := filepath.Ext(logoFile.Filename)
			if logoExt == "" {
				logoExt = ".png"
			}
			logoKey := "logos/" + uuid.NewString() + logoExt
			logoURL, err := utils.UploadFileToR2(logoFile, logoKey)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to upload logo",
					"cause": err.Error(),
				})
			}
			updates.LogoURL = logoURL
		}

		game, err := catalogService.UpdateGame(c.Params("id"), updates)
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to update game",
				"cause": err.Error(),
			})
		}
		return c.JSON(game)
	})

	adminGroup.Get("/games", func(c *fiber.Ctx) error {
		games, err := catalogService.ListGames()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list games",
				"cause": err.Error(),
			})
		}
		return c.JSON(games)
	})

	adminGroup.Get("/games/:id", func(c *fiber.Ctx) error {
		game, err := catalogService.GetGame(c.Params("id"))
		if err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to get game",
				"cause": err.Error(),
			})
		}
		return c.JSON(game)
	})

	adminGroup.Delete("/games/:id", func(c *fiber.Ctx) error {
		if err := catalogService.DeleteGame(c.Params("id")); err != nil {
			return c.Status(engineErrorStatus(err)).JSON(fiber.Map{
				"error": "failed to delete game",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "game deleted"})
	})
}
