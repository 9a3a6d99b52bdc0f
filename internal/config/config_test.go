package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newTestViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Contains(t, cfg.DatabaseSettings, "mode=memory")
	assert.Equal(t, "redis", cfg.ResetStore)
	assert.Equal(t, 10*time.Minute, cfg.Security.PasswordResetCodeExpiry)
	assert.Equal(t, 6, cfg.Security.PasswordResetCodeLength)
	assert.Equal(t, 5*time.Minute, cfg.Security.PasswordResetTicketExpiry)
	assert.Equal(t, 5, cfg.Security.PasswordResetMaxAttempts)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, time.Hour, cfg.SessionConfig.AccessTokenDuration)
	assert.EqualValues(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Period)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := fromViper(newTestViper(map[string]any{
		"DATABASE_DRIVER":             "pgx",
		"DB_HOST":                     "db",
		"DB_PORT":                     5432,
		"DB_USER":                     "zen",
		"DB_NAME":                     "zenguide",
		"DB_PASS":                     "secret",
		"DB_SSL_MODE":                 "disable",
		"RESET_STORE":                 "Memory",
		"PASSWORD_RESET_CODE_EXPIRY":  "15m",
		"PASSWORD_RESET_MAX_ATTEMPTS": 0,
		"BCRYPT_COST":                 12,
		"SMTP_FROM":                   "ZenGuide <no-reply@zenguide.io>",
	}))
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5432 user=zen dbname=zenguide password=secret sslmode=disable", cfg.DatabaseSettings)
	assert.Equal(t, "memory", cfg.ResetStore)
	assert.Equal(t, 15*time.Minute, cfg.Security.PasswordResetCodeExpiry)
	assert.Equal(t, 0, cfg.Security.PasswordResetMaxAttempts)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, "ZenGuide <no-reply@zenguide.io>", cfg.SMTP.From)
}

func TestFromViper_Invalid(t *testing.T) {
	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{"DATABASE_DRIVER": "oracle"}))
		assert.Error(t, err)
	})

	t.Run("UnknownResetStore", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{"RESET_STORE": "convex"}))
		assert.Error(t, err)
	})

	t.Run("NonPositiveExpiry", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{"PASSWORD_RESET_CODE_EXPIRY": "0s"}))
		assert.Error(t, err)
	})

	t.Run("OutOfRangeValuesFallBack", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(map[string]any{
			"PASSWORD_RESET_CODE_LENGTH": 2,
			"BCRYPT_COST":                4,
		}))
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Security.PasswordResetCodeLength)
		assert.Equal(t, 10, cfg.Security.BcryptCost)
	})
}
