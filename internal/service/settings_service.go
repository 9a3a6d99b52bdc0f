package service

import (
	"context"
	"fmt"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

var _ SettingsGenerator = (*SettingsService)(nil)

type SettingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil {
		defaults := models.DefaultUserSettings()
		return &defaults, nil
	}
	return settings, nil
}

// SaveSettings applies the patch on top of the stored row, or on top of the defaults for a first save.
func (s *SettingsService) SaveSettings(ctx context.Context, userID int64, patch models.UserSettingsPatch) (*models.UserSettings, error) {
	if patch.Theme != nil && *patch.Theme != models.ThemeLight && *patch.Theme != models.ThemeDark {
		return nil, ErrInvalidSettings
	}

	saved, err := s.repo.UpdateSettings(ctx, userID, func(current *models.UserSettings) error {
		patch.Apply(current)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return saved, nil
}
