package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, code string, validFor time.Duration) error {
	args := m.Called(ctx, toEmail, code, validFor)
	return args.Error(0)
}
