package models

import (
	"time"
)

// ResetRequest is the single live password reset record for an email.
type ResetRequest struct {
	Email      string     `json:"email"`
	Code       string     `json:"-"` // only ever sent through the notifier
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	Attempts   int        `json:"attempts"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	TicketID   string     `json:"-"`
}

// IsExpired reports whether the code can no longer be used at the given instant.
func (r *ResetRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsVerified reports whether a verified ticket has been issued for this record.
func (r *ResetRequest) IsVerified() bool {
	return r.VerifiedAt != nil && r.TicketID != ""
}

// EmailMessage is what the notifier hands to the mail transport.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}
