// services/errors.go
package services

import "errors"

// Sentinel errors surfaced by the session engine and its collaborators.
// Handlers map these to HTTP statuses; none of them is ever swallowed into a
// default success response.
var (
	// ErrGameNotFound: the game id does not exist in the catalog. A missing
	// row is an error — numeric fallbacks apply only to missing fields on a
	// row that exists.
	ErrGameNotFound = errors.New("game not found")

	// ErrPlayerNotFound: the player has no mirror row from the directory.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrSchoolNotFound: no mirrored school with that id.
	ErrSchoolNotFound = errors.New("school not found")

	// ErrStaleAttempt: the caller reported against a closed level record, or
	// against a level that no longer matches the day's progress pointer.
	// Re-fetch current progress and retry.
	ErrStaleAttempt = errors.New("stale attempt")

	// ErrProgressLocked: the day's progress is locked; no further tries are
	// accepted until the next calendar day.
	ErrProgressLocked = errors.New("daily progress locked")

	// ErrInvalidOutcome: outcome not in {success, failed} or a negative
	// elapsed time.
	ErrInvalidOutcome = errors.New("invalid outcome report")
)
