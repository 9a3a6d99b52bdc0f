package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// MockResetRequestRepository is a mock implementation of the ResetRequestRepository interface.
type MockResetRequestRepository struct {
	mock.Mock
}

func (m *MockResetRequestRepository) UpsertResetRequest(ctx context.Context, req *models.ResetRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockResetRequestRepository) GetResetRequest(ctx context.Context, email string) (*models.ResetRequest, error) {
	args := m.Called(ctx, email)
	req, _ := args.Get(0).(*models.ResetRequest)
	return req, args.Error(1)
}

func (m *MockResetRequestRepository) MarkVerified(ctx context.Context, email string, code string, ticketID string, verifiedAt time.Time) error {
	args := m.Called(ctx, email, code, ticketID, verifiedAt)
	return args.Error(0)
}

func (m *MockResetRequestRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *MockResetRequestRepository) ConsumeResetRequest(ctx context.Context, email string, ticketID string) error {
	args := m.Called(ctx, email, ticketID)
	return args.Error(0)
}

func (m *MockResetRequestRepository) DeleteResetRequest(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
