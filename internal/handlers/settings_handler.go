package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

type SettingsHandler struct {
	SettingsService service.SettingsGenerator
}

func NewSettingsHandler(settingsService service.SettingsGenerator) *SettingsHandler {
	return &SettingsHandler{SettingsService: settingsService}
}

// GetSettings returns the caller's settings, defaults included
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}

	settings, err := h.SettingsService.GetSettings(c.Request().Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to get settings")
		return toHTTPError(err, "Failed to get settings")
	}
	return c.JSON(http.StatusOK, settings)
}

// SaveSettings applies a partial settings update
func (h *SettingsHandler) SaveSettings(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	patch := new(models.UserSettingsPatch)
	if err := bindAndValidate(c, patch); err != nil {
		return err
	}

	settings, err := h.SettingsService.SaveSettings(c.Request().Context(), claims.UserID, *patch)
	if err != nil {
		httpErr := toHTTPError(err, "Failed to save settings")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to save settings")
		}
		return httpErr
	}
	return c.JSON(http.StatusOK, settings)
}
