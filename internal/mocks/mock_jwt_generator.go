package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// MockJWTGenerator is a mock type for the JWTGenerator type
type MockJWTGenerator struct {
	mock.Mock
}

// GenerateToken provides a mock function with given fields: user
func (_m *MockJWTGenerator) GenerateToken(user *models.User) (string, time.Time, error) {
	ret := _m.Called(user)

	return ret.Get(0).(string), ret.Get(1).(time.Time), ret.Error(2)
}

// ValidateToken provides a mock function with given fields: tokenString
func (_m *MockJWTGenerator) ValidateToken(tokenString string) (*models.AccessClaims, error) {
	ret := _m.Called(tokenString)

	claims, _ := ret.Get(0).(*models.AccessClaims)
	return claims, ret.Error(1)
}
