package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/config"
	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

var _ PasswordResetGenerator = (*PasswordResetService)(nil)

// PasswordResetService runs the request, verify and commit phases of a password reset.
type PasswordResetService struct {
	resetRepo repository.ResetRequestRepository
	userRepo  repository.UserRepository
	emailSvc  EmailService
	tickets   TicketIssuer
	cfg       *config.SecurityConfig
	now       func() time.Time
}

// NewPasswordResetService creates a PasswordResetService
func NewPasswordResetService(
	resetRepo repository.ResetRequestRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	tickets TicketIssuer,
	cfg *config.SecurityConfig,
) *PasswordResetService {
	return &PasswordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		emailSvc:  emailSvc,
		tickets:   tickets,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *PasswordResetService) codeLength() int {
	if s.cfg.PasswordResetCodeLength > 0 {
		return s.cfg.PasswordResetCodeLength
	}
	return DefaultOTPLength
}

// RequestReset does not look the account up, so callers cannot learn which emails are registered.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (*models.RequestResetResponse, error) {
	email, err := normalizeAndValidateEmail(email)
	if err != nil {
		return nil, err
	}

	code, err := GenerateOTP(s.codeLength())
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &models.ResetRequest{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.PasswordResetCodeExpiry),
	}
	if err := s.resetRepo.UpsertResetRequest(ctx, req); err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to store password reset request")
		return nil, fmt.Errorf("failed to store password reset request: %w", err)
	}

	// The record is kept when delivery fails; the user can simply ask again.
	if err := s.emailSvc.SendPasswordResetEmail(ctx, email, code, s.cfg.PasswordResetCodeExpiry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailure, err)
	}

	log.Info().Str("email", email).Time("expiresAt", req.ExpiresAt).Msg("Password reset requested")
	return &models.RequestResetResponse{OK: true}, nil
}

// loadRecord maps a missing record to ErrNoActiveRequest.
func (s *PasswordResetService) loadRecord(ctx context.Context, email string) (*models.ResetRequest, error) {
	rec, err := s.resetRepo.GetResetRequest(ctx, email)
	if errors.Is(err, repository.ErrResetRequestNotFound) {
		return nil, ErrNoActiveRequest
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load password reset request: %w", err)
	}
	return rec, nil
}

// expire deletes an expired record and returns ErrExpired.
func (s *PasswordResetService) expire(ctx context.Context, email string) error {
	if err := s.resetRepo.DeleteResetRequest(ctx, email); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Failed to delete expired password reset request")
	}
	return ErrExpired
}

func (s *PasswordResetService) GetActive(ctx context.Context, email string) (*models.ResetRequest, error) {
	email = NormalizeEmail(email)
	rec, err := s.loadRecord(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec.IsExpired(s.now()) {
		return nil, ErrNoActiveRequest
	}
	return rec, nil
}

func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) (*models.VerifyOTPResponse, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	rec, err := s.loadRecord(ctx, email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if rec.IsExpired(now) {
		log.Info().Str("email", email).Msg("Password reset code expired")
		return nil, s.expire(ctx, email)
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return nil, s.recordFailedAttempt(ctx, email)
	}

	// A newer request may have replaced the record since it was read.
	ticketID := uuid.NewString()
	if err := s.resetRepo.MarkVerified(ctx, email, rec.Code, ticketID, now); err != nil {
		if errors.Is(err, repository.ErrResetRequestNotFound) {
			return nil, ErrNoActiveRequest
		}
		return nil, fmt.Errorf("failed to mark password reset request verified: %w", err)
	}

	ticketExpiry := now.Add(s.cfg.PasswordResetTicketExpiry)
	if rec.ExpiresAt.Before(ticketExpiry) {
		ticketExpiry = rec.ExpiresAt
	}
	ticket, ticketExpiresAt, err := s.tickets.IssueResetTicket(email, ticketID, ticketExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to issue password reset ticket: %w", err)
	}

	log.Info().Str("email", email).Msg("Password reset code verified")
	return &models.VerifyOTPResponse{
		Valid:           true,
		Ticket:          ticket,
		TicketExpiresAt: ticketExpiresAt,
	}, nil
}

func (s *PasswordResetService) recordFailedAttempt(ctx context.Context, email string) error {
	attempts, err := s.resetRepo.IncrementAttempts(ctx, email)
	if errors.Is(err, repository.ErrResetRequestNotFound) {
		return ErrNoActiveRequest
	}
	if err != nil {
		return fmt.Errorf("failed to record password reset attempt: %w", err)
	}

	limit := s.cfg.PasswordResetMaxAttempts
	if limit > 0 && attempts >= limit {
		if err := s.resetRepo.DeleteResetRequest(ctx, email); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("Failed to delete locked password reset request")
		}
		log.Warn().Str("email", email).Int("attempts", attempts).Msg("Password reset request locked after too many attempts")
		return ErrTooManyAttempts
	}

	log.Info().Str("email", email).Int("attempts", attempts).Msg("Invalid password reset code")
	return ErrInvalidCode
}

func (s *PasswordResetService) ResetPassword(ctx context.Context, email, newPassword, ticket string) (*models.ResetPasswordResponse, error) {
	email = NormalizeEmail(email)

	claims, err := s.tickets.ParseResetTicket(ticket)
	if err != nil {
		return nil, ErrInvalidTicket
	}
	if claims.Subject != email {
		return nil, ErrInvalidTicket
	}

	rec, err := s.loadRecord(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec.IsExpired(s.now()) {
		return nil, s.expire(ctx, email)
	}
	if !rec.IsVerified() || subtle.ConstantTimeCompare([]byte(rec.TicketID), []byte(claims.ID)) != 1 {
		return nil, ErrInvalidTicket
	}

	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	// Only one commit can win the consume for a given ticket.
	if err := s.resetRepo.ConsumeResetRequest(ctx, email, claims.ID); err != nil {
		if errors.Is(err, repository.ErrResetRequestNotFound) {
			return nil, ErrNoActiveRequest
		}
		return nil, fmt.Errorf("failed to consume password reset request: %w", err)
	}

	if err := s.userRepo.UpsertPasswordHash(ctx, user.ID, hash); err != nil {
		log.Error().Err(err).Str("email", email).Int64("userID", user.ID).Msg("Failed to store new password hash after consuming reset request")
		return nil, fmt.Errorf("%w: %v", ErrPasswordNotUpdated, err)
	}

	log.Info().Str("email", email).Int64("userID", user.ID).Msg("Password reset completed")
	return &models.ResetPasswordResponse{Success: true}, nil
}
