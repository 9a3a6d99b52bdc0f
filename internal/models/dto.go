package models

import (
	"time"
)

// RequestResetRequest is the input for starting a password reset
type RequestResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// RequestResetResponse is the generic acknowledgment returned for every reset request.
// It is identical for known and unknown emails.
type RequestResetResponse struct {
	OK bool `json:"ok"`
}

// VerifyOTPRequest carries the code the user received by email
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required,numeric"`
}

// VerifyOTPResponse is returned when the code matched.
// Ticket must be presented to ResetPassword.
type VerifyOTPResponse struct {
	Valid           bool      `json:"valid"`
	Ticket          string    `json:"ticket"`
	TicketExpiresAt time.Time `json:"ticketExpiresAt"`
}

// ResetPasswordRequest commits the new password
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
	Ticket      string `json:"ticket"`
}

type ResetPasswordResponse struct {
	Success bool `json:"success"`
}

// SignUpRequest is the input for account registration
type SignUpRequest struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"max=63"`
}

// EmailRequest is used by endpoints that only take an email
type EmailRequest struct {
	Email string `json:"email" query:"email" validate:"required"`
}

type EmailExistsResponse struct {
	Exists bool `json:"exists"`
}

// LoginRequest is the input for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful password login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *UserInfo `json:"user"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error string `json:"error"`
}
