package mocks

import (
	"time"

	"github.com/ZenGuideTeam/zg-account-server/internal/config"
)

// CreateTestConfig returns a config with short, test friendly settings.
// BcryptCost is bcrypt.MinCost to keep hashing fast.
func CreateTestConfig() *config.Config {
	return &config.Config{
		AppName:        "ZenGuide",
		AppEnv:         "test",
		JWTSecret:      "test-jwt-secret-for-password-reset-tests",
		DatabaseDriver: "sqlite3",
		ResetStore:     "memory",
		SessionConfig: config.SessionConfig{
			AccessTokenDuration: time.Hour,
		},
		Security: config.SecurityConfig{
			PasswordResetCodeExpiry:   10 * time.Minute,
			PasswordResetCodeLength:   6,
			PasswordResetTicketExpiry: 5 * time.Minute,
			PasswordResetMaxAttempts:  5,
			BcryptCost:                4,
		},
		RateLimit: config.RateLimitConfig{
			Requests: 1000,
			Period:   time.Minute,
		},
	}
}
