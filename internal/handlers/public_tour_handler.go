package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

// PublicTourHandler serves the embeddable widget. No authentication; only active tours are visible.
type PublicTourHandler struct {
	TourService service.TourGenerator
}

func NewPublicTourHandler(tourService service.TourGenerator) *PublicTourHandler {
	return &PublicTourHandler{TourService: tourService}
}

func (h *PublicTourHandler) GetTour(c echo.Context) error {
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	tour, err := h.TourService.GetPublicTour(c.Request().Context(), tourID)
	if err != nil {
		httpErr := toHTTPError(err, "Failed to get tour")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("tourID", tourID).Msg("Failed to get public tour")
		}
		return httpErr
	}
	return c.JSON(http.StatusOK, tour)
}

// TrackEvent records a widget event against an active tour
func (h *PublicTourHandler) TrackEvent(c echo.Context) error {
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	req := new(models.TrackEventRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	_, err = h.TourService.GetPublicTour(ctx, tourID)
	if err == nil {
		err = h.TourService.TrackEvent(ctx, tourID, *req)
	}
	if err != nil {
		httpErr := toHTTPError(err, "Failed to track event")
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Int64("tourID", tourID).Msg("Failed to track widget event")
		}
		return httpErr
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
