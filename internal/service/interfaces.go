package service

import (
	"context"
	"time"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

// JWTGenerator issues and checks login access tokens
type JWTGenerator interface {
	GenerateToken(user *models.User) (string, time.Time, error)
	ValidateToken(tokenString string) (*models.AccessClaims, error)
}

// TicketIssuer issues the verified ticket handed out after a successful code check
type TicketIssuer interface {
	// IssueResetTicket signs a ticket for email with the given ID.
	// The returned time is the expiry actually written into the ticket.
	IssueResetTicket(email, ticketID string, expiresAt time.Time) (string, time.Time, error)
	ParseResetTicket(tokenString string) (*models.ResetTicketClaims, error)
}

// EmailService delivers messages to users
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, code string, validFor time.Duration) error
}

type PasswordResetGenerator interface {
	// RequestReset stores a fresh code for the email and mails it.
	// The response never depends on whether an account exists.
	RequestReset(ctx context.Context, email string) (*models.RequestResetResponse, error)
	// GetActive returns the live record for the email, or ErrNoActiveRequest.
	GetActive(ctx context.Context, email string) (*models.ResetRequest, error)
	// VerifyOTP checks the code and returns a verified ticket.
	VerifyOTP(ctx context.Context, email, code string) (*models.VerifyOTPResponse, error)
	// ResetPassword commits the new password for a verified ticket.
	ResetPassword(ctx context.Context, email, newPassword, ticket string) (*models.ResetPasswordResponse, error)
}

type UserGenerator interface {
	Register(ctx context.Context, req models.SignUpRequest) (*models.UserInfo, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	GetCurrentUser(ctx context.Context, email string) (*models.UserInfo, error)
	// ChangePassword replaces the password of a signed-in user after checking the current one.
	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.UpdateProfileResponse, error)
}

type SettingsGenerator interface {
	// GetSettings falls back to the defaults when the user never saved settings.
	GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error)
	SaveSettings(ctx context.Context, userID int64, patch models.UserSettingsPatch) (*models.UserSettings, error)
}

type TourGenerator interface {
	ListTours(ctx context.Context, userID int64) ([]*models.Tour, error)
	GetTour(ctx context.Context, userID, tourID int64) (*models.Tour, error)
	CreateTour(ctx context.Context, userID int64, req models.CreateTourRequest) (*models.Tour, error)
	UpdateTour(ctx context.Context, userID, tourID int64, patch models.TourPatch) (*models.Tour, error)
	DeleteTour(ctx context.Context, userID, tourID int64) error
	SaveSteps(ctx context.Context, userID, tourID int64, steps []models.TourStep) (*models.Tour, error)
	// TrackEvent records a widget or dashboard event without an ownership check.
	TrackEvent(ctx context.Context, tourID int64, req models.TrackEventRequest) error
	// GetPublicTour returns active tours only.
	GetPublicTour(ctx context.Context, tourID int64) (*models.PublicTour, error)
	GetTourAnalytics(ctx context.Context, userID, tourID int64, timeRange string) (*models.TourAnalyticsReport, error)
	GetFunnel(ctx context.Context, userID, tourID int64) ([]models.FunnelStep, error)
}
