package repository

import (
	"context"
	"errors"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// UserRepository defines operations for storing/retrieving accounts and their credentials
type UserRepository interface {
	// CreateUser stores the account and its password hash.
	// It should return ErrUserExists if the email is already taken.
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error)

	// CheckIfUserExists check if the email exist in the database
	CheckIfUserExists(ctx context.Context, email string) (bool, error)

	// GetUserByEmail retrieves the account with its credential.
	// It should return ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID is GetUserByEmail keyed by the account ID.
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	// UpdateProfile replaces the email and display name of the user.
	// It should return ErrUserExists if the email belongs to someone else.
	UpdateProfile(ctx context.Context, userID int64, email, displayName string) (*models.User, error)

	// UpsertPasswordHash creates the credential row for the user or replaces its hash.
	UpsertPasswordHash(ctx context.Context, userID int64, passwordHash string) error
}

// Common errors
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
