package service

import (
	"errors"

	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

// Password reset errors
var (
	ErrNoActiveRequest     = errors.New("no active password reset request")
	ErrExpired             = errors.New("password reset code has expired")
	ErrInvalidCode         = errors.New("invalid password reset code")
	ErrTooManyAttempts     = errors.New("too many invalid attempts, request a new code")
	ErrInvalidTicket       = errors.New("invalid or expired password reset ticket")
	ErrNotificationFailure = errors.New("failed to send password reset email")
	ErrPasswordNotUpdated  = errors.New("password was not updated, request a new code")
)

// Account errors
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be between 8 characters and 72 bytes long")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrUserExists         = repository.ErrUserExists
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrInvalidProfile     = errors.New("display name must be at most 63 characters")
	ErrInvalidSettings    = errors.New("invalid settings, theme must be light or dark")
)

// Tour errors
var (
	ErrTourNotFound     = repository.ErrTourNotFound
	ErrInvalidTour      = errors.New("invalid tour")
	ErrInvalidEventType = errors.New("invalid tour event type")
	ErrInvalidTimeRange = errors.New("invalid time range, expected 24h, 7d or 30d")
)
