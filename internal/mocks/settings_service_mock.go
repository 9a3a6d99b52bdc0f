package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	args := m.Called(ctx, userID)
	settings, _ := args.Get(0).(*models.UserSettings)
	return settings, args.Error(1)
}

func (m *MockSettingsService) SaveSettings(ctx context.Context, userID int64, patch models.UserSettingsPatch) (*models.UserSettings, error) {
	args := m.Called(ctx, userID, patch)
	settings, _ := args.Get(0).(*models.UserSettings)
	return settings, args.Error(1)
}
