package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// MockUserService is a mock type for the UserGenerator type
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req models.SignUpRequest) (*models.UserInfo, error) {
	args := m.Called(ctx, req)
	info, _ := args.Get(0).(*models.UserInfo)
	return info, args.Error(1)
}

func (m *MockUserService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *MockUserService) GetCurrentUser(ctx context.Context, email string) (*models.UserInfo, error) {
	args := m.Called(ctx, email)
	info, _ := args.Get(0).(*models.UserInfo)
	return info, args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	args := m.Called(ctx, email, currentPassword, newPassword)
	return args.Error(0)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.UpdateProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*models.UpdateProfileResponse)
	return resp, args.Error(1)
}
