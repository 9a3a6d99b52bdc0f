package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

// statusBySentinel maps service errors to HTTP status codes. The sentinel message is returned as is,
// unless detailed is set, in which case the full wrapped message is used.
var statusBySentinel = []struct {
	err      error
	status   int
	detailed bool
}{
	{service.ErrNoActiveRequest, http.StatusNotFound, false},
	{service.ErrExpired, http.StatusGone, false},
	{service.ErrInvalidCode, http.StatusUnauthorized, false},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, false},
	{service.ErrInvalidTicket, http.StatusUnauthorized, false},
	{service.ErrUserNotFound, http.StatusNotFound, false},
	{service.ErrNotificationFailure, http.StatusBadGateway, false},
	{service.ErrPasswordNotUpdated, http.StatusInternalServerError, false},
	{service.ErrInvalidEmail, http.StatusBadRequest, false},
	{service.ErrWeakPassword, http.StatusBadRequest, false},
	{service.ErrUserExists, http.StatusConflict, false},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, false},
	{service.ErrIncorrectPassword, http.StatusForbidden, false},
	{service.ErrInvalidProfile, http.StatusBadRequest, false},
	{service.ErrInvalidSettings, http.StatusBadRequest, false},
	{service.ErrTourNotFound, http.StatusNotFound, false},
	{service.ErrInvalidTour, http.StatusBadRequest, true},
	{service.ErrInvalidEventType, http.StatusBadRequest, false},
	{service.ErrInvalidTimeRange, http.StatusBadRequest, false},
}

// toHTTPError converts a service error into an *echo.HTTPError.
// Anything unrecognized becomes a 500 with the given fallback message.
func toHTTPError(err error, fallback string) *echo.HTTPError {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			if m.detailed {
				return echo.NewHTTPError(m.status, err.Error())
			}
			return echo.NewHTTPError(m.status, m.err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
