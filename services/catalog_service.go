// services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"edu-game-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CatalogService owns the game catalog: admin CRUD plus the read-only
// config lookup the session engine depends on.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// CreateGame inserts a new draft game. The slug is derived from the name;
// a duplicate name gets a short uuid suffix instead of failing the insert.
func (s *CatalogService) CreateGame(game *models.Game) error {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.Status == "" {
		game.Status = models.GameStatusDraft
	}
	game.Slug = slug.Make(game.Name)

	var count int64
	s.DB.Model(&models.Game{}).Where("slug = ?", game.Slug).Count(&count)
	if count > 0 {
		game.Slug = fmt.Sprintf("%s-%s", game.Slug, game.ID[:8])
	}

	return s.DB.Create(game).Error
}

// UpdateGame applies the mutable catalog fields. A renamed game gets a
// fresh slug.
func (s *CatalogService) UpdateGame(id string, updates *models.Game) (*models.Game, error) {
	var game models.Game
	if err := s.DB.Where("id = ?", id).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if updates.Name != "" && updates.Name != game.Name {
		game.Name = updates.Name
		game.Slug = slug.Make(updates.Name)
	}
	if updates.Description != "" {
		game.Description = updates.Description
	}
	if updates.LogoURL != "" {
		game.LogoURL = updates.LogoURL
	}
	if updates.Status != "" {
		game.Status = updates.Status
	}
	if updates.MaxLevel > 0 {
		game.MaxLevel = updates.MaxLevel
	}
	if updates.MaxRetry > 0 {
		game.MaxRetry = updates.MaxRetry
	}
	if updates.MaxTime > 0 {
		game.MaxTime = updates.MaxTime
	}

	if err := s.DB.Save(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *CatalogService) GetGame(id string) (*models.Game, error) {
	var game models.Game
	if err := s.DB.Where("id = ?", id).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *CatalogService) ListGames() ([]models.Game, error) {
	var games []models.Game
	err := s.DB.Order("created_at DESC").Find(&games).Error
	return games, err
}

func (s *CatalogService) DeleteGame(id string) error {
	res := s.DB.Where("id = ?", id).Delete(&models.Game{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

// GetConfig resolves a game's session config. A missing game is
// ErrGameNotFound — the per-field fallbacks in Resolved() apply only to
// rows that exist.
func (s *CatalogService) GetConfig(gameID string) (models.GameConfig, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return models.GameConfig{}, err
	}
	return game.Resolved(), nil
}
