package repository

import (
	"context"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// SettingsRepository stores one settings row per user.
type SettingsRepository interface {
	// GetSettings returns the stored settings, or nil when the user never saved any.
	GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error)

	// UpdateSettings loads the row (or defaults when there is none), lets fn modify it
	// and writes it back, all in one transaction.
	UpdateSettings(ctx context.Context, userID int64, fn func(s *models.UserSettings) error) (*models.UserSettings, error)
}
