package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

const (
	tokenIssuer         = "zg-account-server"
	accessTokenAudience = "zg-client-app"
	resetTicketAudience = "password-reset"
	defaultAccessTTL    = time.Hour
)

var (
	_ JWTGenerator = (*JWTService)(nil)
	_ TicketIssuer = (*JWTService)(nil)
)

// JWTService signs access tokens and password reset tickets with one HMAC secret.
// The audience keeps the two kinds from being accepted in place of each other.
type JWTService struct {
	jwtSecret []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenService creates a JWTService
func NewTokenService(secret string, accessTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &JWTService{
		jwtSecret: []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

func (s *JWTService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string) error {
	keyFunc := func(*jwt.Token) (any, error) { return s.jwtSecret, nil }
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// GenerateToken creates a new access token for a user
func (s *JWTService) GenerateToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := &models.AccessClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{accessTokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if err := s.parse(tokenString, claims, accessTokenAudience); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (s *JWTService) IssueResetTicket(email, ticketID string, expiresAt time.Time) (string, time.Time, error) {
	now := s.now()
	claims := &models.ResetTicketClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ticketID,
			Subject:   email,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{resetTicketAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := s.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// ParseResetTicket returns ErrInvalidTicket for anything that is not a live, correctly signed ticket.
func (s *JWTService) ParseResetTicket(tokenString string) (*models.ResetTicketClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidTicket
	}
	claims := &models.ResetTicketClaims{}
	if err := s.parse(tokenString, claims, resetTicketAudience); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidTicket
	}
	return claims, nil
}

