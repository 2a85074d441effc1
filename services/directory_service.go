// services/directory_service.go
package services

import (
	"errors"

	"edu-game-system/models"

	"gorm.io/gorm"
)

// DirectoryService is the read side of the directory mirror: identity and
// school lookups for players. The sync worker writes the mirror; this never
// calls the directory service over the network.
type DirectoryService struct {
	DB *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{DB: db}
}

// GetPlayer resolves a player by the gateway-issued user ID.
func (s *DirectoryService) GetPlayer(externalUserID string) (*models.PlayerMirror, error) {
	var player models.PlayerMirror
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

// GetSchool resolves a mirrored school row.
func (s *DirectoryService) GetSchool(id string) (*models.School, error) {
	var school models.School
	err := s.DB.Where("id = ?", id).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return &school, nil
}
