package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "a_very_secret_key_change_me"

type SessionConfig struct {
	AccessTokenDuration time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
}

type RedisSettings struct {
	Address  string
	Password string
	DB       int
}

type SecurityConfig struct {
	PasswordResetCodeExpiry   time.Duration `mapstructure:"PASSWORD_RESET_CODE_EXPIRY"`   // e.g., "10m"
	PasswordResetCodeLength   int           `mapstructure:"PASSWORD_RESET_CODE_LENGTH"`   // digits
	PasswordResetTicketExpiry time.Duration `mapstructure:"PASSWORD_RESET_TICKET_EXPIRY"` // e.g., "5m"
	// 0 disables the lockout
	PasswordResetMaxAttempts int `mapstructure:"PASSWORD_RESET_MAX_ATTEMPTS"`
	BcryptCost               int `mapstructure:"BCRYPT_COST"`
}

type SmtpConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     string `mapstructure:"SMTP_PORT"`
	User     string `mapstructure:"SMTP_USER"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
	NOTLS    bool   `mapstructure:"SMTP_NOTLS"`
}

type RateLimitConfig struct {
	Requests int64         `mapstructure:"RATE_LIMIT_REQUESTS"`
	Period   time.Duration `mapstructure:"RATE_LIMIT_PERIOD"`
}

type Config struct {
	// Server port
	Port      string
	AppEnv    string
	AppName   string
	LogLevel  string
	JWTSecret string
	// sqlite3 or pgx
	DatabaseDriver string
	// host=<host> port=<port> user=<user> dbname=<database> password=<pass> sslmode=<enable/disable>
	DatabaseSettings string
	// redis or memory
	ResetStore    string
	RedisSettings RedisSettings
	SessionConfig SessionConfig   `mapstructure:",squash"`
	SMTP          SmtpConfig      `mapstructure:",squash"`
	Security      SecurityConfig  `mapstructure:",squash"`
	RateLimit     RateLimitConfig `mapstructure:",squash"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_NAME", "ZenGuide")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ACCESS_TOKEN_DURATION", "1h")
	v.SetDefault("DATABASE_DRIVER", "sqlite3")
	v.SetDefault("RESET_STORE", "redis")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("PASSWORD_RESET_CODE_EXPIRY", "10m")
	v.SetDefault("PASSWORD_RESET_CODE_LENGTH", 6)
	v.SetDefault("PASSWORD_RESET_TICKET_EXPIRY", "5m")
	v.SetDefault("PASSWORD_RESET_MAX_ATTEMPTS", 5)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_PERIOD", "1m")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	// Load configuration
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	// JWT Secret
	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == defaultJWTSecret {
		log.Println("Warning: Using default JWT secret. Set JWT_SECRET environment variable or in config file.")
	}

	// Database Configuration
	databaseDriver := v.GetString("DATABASE_DRIVER")
	var databaseSettings string
	switch {
	case v.GetString("DATABASE_DSN") != "":
		databaseSettings = v.GetString("DATABASE_DSN")
	case databaseDriver == "sqlite3":
		databaseSettings = "file:zenguide?mode=memory&cache=shared&_fk=1"
	case databaseDriver == "pgx":
		databaseSettings = fmt.Sprintf(
			"host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
			v.GetString("DB_HOST"),
			v.GetInt("DB_PORT"),
			v.GetString("DB_USER"),
			v.GetString("DB_NAME"),
			v.GetString("DB_PASS"),
			v.GetString("DB_SSL_MODE"),
		)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want sqlite3 or pgx)", databaseDriver)
	}

	resetStore := strings.ToLower(v.GetString("RESET_STORE"))
	if resetStore != "redis" && resetStore != "memory" {
		return nil, fmt.Errorf("unsupported RESET_STORE %q (want redis or memory)", resetStore)
	}

	security := SecurityConfig{
		PasswordResetCodeExpiry:   v.GetDuration("PASSWORD_RESET_CODE_EXPIRY"),
		PasswordResetCodeLength:   v.GetInt("PASSWORD_RESET_CODE_LENGTH"),
		PasswordResetTicketExpiry: v.GetDuration("PASSWORD_RESET_TICKET_EXPIRY"),
		PasswordResetMaxAttempts:  v.GetInt("PASSWORD_RESET_MAX_ATTEMPTS"),
		BcryptCost:                v.GetInt("BCRYPT_COST"),
	}
	if security.PasswordResetCodeExpiry <= 0 {
		return nil, fmt.Errorf("PASSWORD_RESET_CODE_EXPIRY must be positive")
	}
	if security.PasswordResetCodeLength < 4 || security.PasswordResetCodeLength > 10 {
		log.Printf("Invalid PASSWORD_RESET_CODE_LENGTH %d, defaulting to 6", security.PasswordResetCodeLength)
		security.PasswordResetCodeLength = 6
	}
	if security.PasswordResetTicketExpiry <= 0 {
		security.PasswordResetTicketExpiry = 5 * time.Minute
	}
	if security.PasswordResetMaxAttempts < 0 {
		security.PasswordResetMaxAttempts = 0
	}
	if security.BcryptCost < 10 || security.BcryptCost > 14 {
		log.Printf("Invalid BCRYPT_COST %d, defaulting to 10", security.BcryptCost)
		security.BcryptCost = 10
	}

	return &Config{
		Port:             v.GetString("APP_PORT"),
		AppEnv:           v.GetString("APP_ENV"),
		AppName:          v.GetString("APP_NAME"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		JWTSecret:        jwtSecret,
		DatabaseDriver:   databaseDriver,
		DatabaseSettings: databaseSettings,
		ResetStore:       resetStore,
		RedisSettings: RedisSettings{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SessionConfig: SessionConfig{
			AccessTokenDuration: v.GetDuration("ACCESS_TOKEN_DURATION"),
		},
		SMTP: SmtpConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetString("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
			NOTLS:    v.GetBool("SMTP_NOTLS"),
		},
		Security: security,
		RateLimit: RateLimitConfig{
			Requests: v.GetInt64("RATE_LIMIT_REQUESTS"),
			Period:   v.GetDuration("RATE_LIMIT_PERIOD"),
		},
	}, nil
}
