package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/config"
	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

var _ UserGenerator = (*userService)(nil)

type userService struct {
	userRepo repository.UserRepository
	tokenSvc JWTGenerator
	cfg      *config.SecurityConfig
	// compared against when the email is unknown so every failed login costs one bcrypt run
	dummyHash string
}

func NewUserService(userRepo repository.UserRepository, tokenSvc JWTGenerator, cfg *config.SecurityConfig) *userService {
	dummyHash, err := HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prepare dummy password hash")
	}
	return &userService{
		userRepo:  userRepo,
		tokenSvc:  tokenSvc,
		cfg:       cfg,
		dummyHash: dummyHash,
	}
}

func (s *userService) Register(ctx context.Context, req models.SignUpRequest) (*models.UserInfo, error) {
	email, err := normalizeAndValidateEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, email, strings.TrimSpace(req.DisplayName), hash)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("email", email).Int64("userID", user.ID).Msg("User registered")
	return user.Info(), nil
}

func (s *userService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	email, err := normalizeAndValidateEmail(email)
	if err != nil {
		return false, err
	}
	return s.userRepo.CheckIfUserExists(ctx, email)
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash := s.dummyHash
	if user != nil && user.PasswordHash != "" {
		hash = user.PasswordHash
	}
	ok := false
	if hash != "" {
		if ok, err = CheckPassword(hash, password); err != nil {
			return nil, err
		}
	}
	if !ok || user == nil || user.PasswordHash == "" {
		log.Info().Str("email", email).Msg("Login failed")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenSvc.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	log.Info().Str("email", email).Int64("userID", user.ID).Msg("User logged in")
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Info(),
	}, nil
}

func (s *userService) GetCurrentUser(ctx context.Context, email string) (*models.UserInfo, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user.Info(), nil
}

func (s *userService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	email = NormalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.PasswordHash == "" {
		return ErrIncorrectPassword
	}
	ok, err := CheckPassword(user.PasswordHash, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		log.Info().Str("email", email).Msg("Password change rejected, current password mismatch")
		return ErrIncorrectPassword
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpsertPasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info().Str("email", email).Int64("userID", user.ID).Msg("Password changed")
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.UpdateProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	email := user.Email
	if req.Email != nil {
		if email, err = normalizeAndValidateEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	displayName := user.DisplayName
	if req.DisplayName != nil {
		displayName = strings.TrimSpace(*req.DisplayName)
		if utf8.RuneCountInString(displayName) > 63 {
			return nil, ErrInvalidProfile
		}
	}

	updated, err := s.userRepo.UpdateProfile(ctx, userID, email, displayName)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	resp := &models.UpdateProfileResponse{User: updated.Info()}
	if updated.Email != user.Email {
		token, expiresAt, err := s.tokenSvc.GenerateToken(updated)
		if err != nil {
			return nil, fmt.Errorf("failed to generate access token: %w", err)
		}
		resp.Token = token
		resp.ExpiresAt = &expiresAt
		log.Info().Str("oldEmail", user.Email).Str("email", updated.Email).Int64("userID", userID).Msg("User email changed")
	}
	return resp, nil
}
