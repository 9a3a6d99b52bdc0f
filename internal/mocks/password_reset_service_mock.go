package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// MockPasswordResetService is a mock type for the PasswordResetGenerator type
type MockPasswordResetService struct {
	mock.Mock
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, email string) (*models.RequestResetResponse, error) {
	args := m.Called(ctx, email)
	resp, _ := args.Get(0).(*models.RequestResetResponse)
	return resp, args.Error(1)
}

func (m *MockPasswordResetService) GetActive(ctx context.Context, email string) (*models.ResetRequest, error) {
	args := m.Called(ctx, email)
	req, _ := args.Get(0).(*models.ResetRequest)
	return req, args.Error(1)
}

func (m *MockPasswordResetService) VerifyOTP(ctx context.Context, email, code string) (*models.VerifyOTPResponse, error) {
	args := m.Called(ctx, email, code)
	resp, _ := args.Get(0).(*models.VerifyOTPResponse)
	return resp, args.Error(1)
}

func (m *MockPasswordResetService) ResetPassword(ctx context.Context, email, newPassword, ticket string) (*models.ResetPasswordResponse, error) {
	args := m.Called(ctx, email, newPassword, ticket)
	resp, _ := args.Get(0).(*models.ResetPasswordResponse)
	return resp, args.Error(1)
}
