package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

// PasswordResetHandler handles the password reset endpoints
type PasswordResetHandler struct {
	PasswordResetService service.PasswordResetGenerator
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(resetService service.PasswordResetGenerator) *PasswordResetHandler {
	return &PasswordResetHandler{PasswordResetService: resetService}
}

// RequestReset starts a reset and mails a code. The answer is the same whether or not the account exists.
func (h *PasswordResetHandler) RequestReset(c echo.Context) error {
	req := new(models.RequestResetRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	resp, err := h.PasswordResetService.RequestReset(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidEmail) {
			log.Error().Err(err).Str("email", req.Email).Msg("Password reset request failed")
		}
		return toHTTPError(err, "Failed to start password reset")
	}

	return c.JSON(http.StatusOK, resp)
}

// VerifyOTP checks the emailed code and returns a verified ticket
func (h *PasswordResetHandler) VerifyOTP(c echo.Context) error {
	req := new(models.VerifyOTPRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	resp, err := h.PasswordResetService.VerifyOTP(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		httpErr := toHTTPError(err, "Failed to verify code")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", req.Email).Msg("Password reset verification failed")
		}
		return httpErr
	}

	return c.JSON(http.StatusOK, resp)
}

// ResetPassword commits the new password for a verified ticket
func (h *PasswordResetHandler) ResetPassword(c echo.Context) error {
	req := new(models.ResetPasswordRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	resp, err := h.PasswordResetService.ResetPassword(c.Request().Context(), req.Email, req.NewPassword, req.Ticket)
	if err != nil {
		httpErr := toHTTPError(err, "Failed to reset password")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", req.Email).Msg("Password reset commit failed")
		}
		return httpErr
	}

	return c.JSON(http.StatusOK, resp)
}
