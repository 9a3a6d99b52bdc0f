package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

func TestJWTAuth(t *testing.T) {
	tokens := service.NewTokenService("test-secret", time.Hour)

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		claims, ok := c.Get("user").(*models.AccessClaims)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, claims.Subject)
	}, JWTAuth(tokens))

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("ValidToken", func(t *testing.T) {
		token, _, err := tokens.GenerateToken(&models.User{ID: 1, Email: "a@b.com"})
		require.NoError(t, err)

		rec := call("Bearer " + token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a@b.com", rec.Body.String())
	})

	t.Run("MissingHeader", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("Bearer nope").Code)
	})

	t.Run("ResetTicketIsNotAnAccessToken", func(t *testing.T) {
		ticket, _, err := tokens.IssueResetTicket("a@b.com", "ticket-1", time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+ticket).Code)
	})
}
