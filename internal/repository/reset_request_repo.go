package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// ErrResetRequestNotFound is returned when no reset record exists for an email,
// or when a conditional consume lost to another writer.
var ErrResetRequestNotFound = errors.New("password reset request not found")

// ResetRequestRepository stores at most one password reset record per email.
// Emails are expected to be normalized by the caller.
type ResetRequestRepository interface {
	// UpsertResetRequest saves the record for req.Email, replacing any previous one.
	UpsertResetRequest(ctx context.Context, req *models.ResetRequest) error
	// GetResetRequest returns the stored record, expired or not.
	// It should return ErrResetRequestNotFound if there is none.
	GetResetRequest(ctx context.Context, email string) (*models.ResetRequest, error)
	// MarkVerified binds a verified ticket ID to the record, provided it still holds code.
	// It should return ErrResetRequestNotFound if the record is gone or was replaced.
	MarkVerified(ctx context.Context, email string, code string, ticketID string, verifiedAt time.Time) error
	// IncrementAttempts bumps the failed attempt counter and returns the new value.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	// ConsumeResetRequest deletes the record only if it still carries ticketID.
	// It should return ErrResetRequestNotFound if the record is gone or was replaced.
	ConsumeResetRequest(ctx context.Context, email string, ticketID string) error
	// DeleteResetRequest removes the record. Deleting a missing record is not an error.
	DeleteResetRequest(ctx context.Context, email string) error
}
