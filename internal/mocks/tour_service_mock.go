package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// MockTourService is a mock type for the TourGenerator type
type MockTourService struct {
	mock.Mock
}

func (m *MockTourService) ListTours(ctx context.Context, userID int64) ([]*models.Tour, error) {
	args := m.Called(ctx, userID)
	tours, _ := args.Get(0).([]*models.Tour)
	return tours, args.Error(1)
}

func (m *MockTourService) GetTour(ctx context.Context, userID, tourID int64) (*models.Tour, error) {
	args := m.Called(ctx, userID, tourID)
	tour, _ := args.Get(0).(*models.Tour)
	return tour, args.Error(1)
}

func (m *MockTourService) CreateTour(ctx context.Context, userID int64, req models.CreateTourRequest) (*models.Tour, error) {
	args := m.Called(ctx, userID, req)
	tour, _ := args.Get(0).(*models.Tour)
	return tour, args.Error(1)
}

func (m *MockTourService) UpdateTour(ctx context.Context, userID, tourID int64, patch models.TourPatch) (*models.Tour, error) {
	args := m.Called(ctx, userID, tourID, patch)
	tour, _ := args.Get(0).(*models.Tour)
	return tour, args.Error(1)
}

func (m *MockTourService) DeleteTour(ctx context.Context, userID, tourID int64) error {
	args := m.Called(ctx, userID, tourID)
	return args.Error(0)
}

func (m *MockTourService) SaveSteps(ctx context.Context, userID, tourID int64, steps []models.TourStep) (*models.Tour, error) {
	args := m.Called(ctx, userID, tourID, steps)
	tour, _ := args.Get(0).(*models.Tour)
	return tour, args.Error(1)
}

func (m *MockTourService) TrackEvent(ctx context.Context, tourID int64, req models.TrackEventRequest) error {
	args := m.Called(ctx, tourID, req)
	return args.Error(0)
}

func (m *MockTourService) GetPublicTour(ctx context.Context, tourID int64) (*models.PublicTour, error) {
	args := m.Called(ctx, tourID)
	tour, _ := args.Get(0).(*models.PublicTour)
	return tour, args.Error(1)
}

func (m *MockTourService) GetTourAnalytics(ctx context.Context, userID, tourID int64, timeRange string) (*models.TourAnalyticsReport, error) {
	args := m.Called(ctx, userID, tourID, timeRange)
	report, _ := args.Get(0).(*models.TourAnalyticsReport)
	return report, args.Error(1)
}

func (m *MockTourService) GetFunnel(ctx context.Context, userID, tourID int64) ([]models.FunnelStep, error) {
	args := m.Called(ctx, userID, tourID)
	funnel, _ := args.Get(0).([]models.FunnelStep)
	return funnel, args.Error(1)
}
