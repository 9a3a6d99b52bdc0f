package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

const testSecret = "test-jwt-secret"

func TestNewTokenService(t *testing.T) {
	service := NewTokenService(testSecret, 0)
	require.NotNil(t, service, "NewTokenService should not return nil")
	assert.Equal(t, []byte(testSecret), service.jwtSecret, "jwtSecret was not initialized correctly")
	assert.Equal(t, defaultAccessTTL, service.accessTTL, "zero TTL should fall back to the default")
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := NewTokenService(testSecret, time.Hour)
	user := &models.User{ID: 123, Email: "a@b.com"}

	t.Run("Success", func(t *testing.T) {
		tokenString, expiry, err := service.GenerateToken(user)

		require.NoError(t, err, "GenerateToken should not return an error")
		require.NotEmpty(t, tokenString, "Generated token string should not be empty")

		// Check expiry time (approx 1 hour from now)
		expectedExpiry := time.Now().Add(time.Hour * 1)
		assert.WithinDuration(t, expectedExpiry, expiry, 5*time.Second, "Expiry time is not approximately 1 hour from now")

		// Parse the token to verify claims
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			// Make sure that the alg is what we expect (HS256)
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(testSecret), nil
		})
		require.NoError(t, err, "Failed to parse generated token")
		assert.True(t, token.Valid, "Generated token should be valid")

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok, "Token claims should be of type jwt.MapClaims")

		assert.Equal(t, "a@b.com", claims["sub"], "Subject claim (sub) is incorrect")
		assert.EqualValues(t, 123, claims["uid"], "User ID claim (uid) is incorrect")
		assert.Equal(t, "zg-account-server", claims["iss"], "Issuer claim (iss) is incorrect")
		assert.Equal(t, []interface{}{"zg-client-app"}, claims["aud"], "Audience claim (aud) is incorrect")

		expClaim, ok := claims["exp"].(float64)
		require.True(t, ok, "Expiration claim (exp) should be a number")
		assert.EqualValues(t, expiry.Unix(), int64(expClaim), "Expiration claim (exp) does not match returned expiry")
	})

	t.Run("RoundTrip", func(t *testing.T) {
		tokenString, _, err := service.GenerateToken(user)
		require.NoError(t, err)

		claims, err := service.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, int64(123), claims.UserID)
		assert.Equal(t, "a@b.com", claims.Subject)
	})
}

func TestJWTService_ValidateToken(t *testing.T) {
	service := NewTokenService(testSecret, time.Hour)
	user := &models.User{ID: 7, Email: "a@b.com"}

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenService("another-secret", time.Hour)
		tokenString, _, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		tokenString, _, err := service.GenerateToken(user)
		require.NoError(t, err)

		service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { service.now = time.Now }()

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("RejectsResetTicket", func(t *testing.T) {
		ticket, _, err := service.IssueResetTicket("a@b.com", "ticket-1", time.Now().Add(time.Minute))
		require.NoError(t, err)

		_, err = service.ValidateToken(ticket)
		assert.Error(t, err, "a reset ticket must not pass as an access token")
	})

	t.Run("RejectsNoneAlgorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "a@b.com",
			"iss": "zg-account-server",
			"aud": "zg-client-app",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.Error(t, err)
	})
}

func TestJWTService_ResetTicket(t *testing.T) {
	service := NewTokenService(testSecret, time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		expiresAt := time.Now().Add(5 * time.Minute)
		ticket, exp, err := service.IssueResetTicket("a@b.com", "ticket-1", expiresAt)
		require.NoError(t, err)
		assert.WithinDuration(t, expiresAt, exp, time.Second)

		claims, err := service.ParseResetTicket(ticket)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", claims.Subject)
		assert.Equal(t, "ticket-1", claims.ID)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := service.ParseResetTicket("")
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := service.ParseResetTicket("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("Expired", func(t *testing.T) {
		ticket, _, err := service.IssueResetTicket("a@b.com", "ticket-1", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = service.ParseResetTicket(ticket)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("RejectsAccessToken", func(t *testing.T) {
		tokenString, _, err := service.GenerateToken(&models.User{ID: 1, Email: "a@b.com"})
		require.NoError(t, err)

		_, err = service.ParseResetTicket(tokenString)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})
}
