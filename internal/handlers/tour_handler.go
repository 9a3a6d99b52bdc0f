package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

type TourHandler struct {
	TourService service.TourGenerator
}

func NewTourHandler(tourService service.TourGenerator) *TourHandler {
	return &TourHandler{TourService: tourService}
}

// tourIDParam reads the :id path parameter. Malformed ids name no tour.
func tourIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, service.ErrTourNotFound.Error())
	}
	return id, nil
}

func tourError(err error, fallback string, userID, tourID int64) *echo.HTTPError {
	httpErr := toHTTPError(err, fallback)
	if httpErr.Code == http.StatusInternalServerError {
		log.Error().Err(err).Int64("userID", userID).Int64("tourID", tourID).Msg(fallback)
	}
	return httpErr
}

func (h *TourHandler) List(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tours, err := h.TourService.ListTours(c.Request().Context(), claims.UserID)
	if err != nil {
		return tourError(err, "Failed to list tours", claims.UserID, 0)
	}
	return c.JSON(http.StatusOK, tours)
}

func (h *TourHandler) Get(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	tour, err := h.TourService.GetTour(c.Request().Context(), claims.UserID, tourID)
	if err != nil {
		return tourError(err, "Failed to get tour", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, tour)
}

func (h *TourHandler) Create(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	req := new(models.CreateTourRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	tour, err := h.TourService.CreateTour(c.Request().Context(), claims.UserID, *req)
	if err != nil {
		return tourError(err, "Failed to create tour", claims.UserID, 0)
	}
	return c.JSON(http.StatusCreated, tour)
}

func (h *TourHandler) Update(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	patch := new(models.TourPatch)
	if err := bindAndValidate(c, patch); err != nil {
		return err
	}
	tour, err := h.TourService.UpdateTour(c.Request().Context(), claims.UserID, tourID, *patch)
	if err != nil {
		return tourError(err, "Failed to update tour", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, tour)
}

func (h *TourHandler) Delete(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	if err := h.TourService.DeleteTour(c.Request().Context(), claims.UserID, tourID); err != nil {
		return tourError(err, "Failed to delete tour", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// SaveSteps replaces the whole step list of a tour
func (h *TourHandler) SaveSteps(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	req := new(models.SaveStepsRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	tour, err := h.TourService.SaveSteps(c.Request().Context(), claims.UserID, tourID, req.Steps)
	if err != nil {
		return tourError(err, "Failed to save tour steps", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, tour)
}

// TrackEvent records an event from the dashboard preview. The tour must belong to the caller.
func (h *TourHandler) TrackEvent(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	req := new(models.TrackEventRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.TourService.GetTour(ctx, claims.UserID, tourID); err != nil {
		return tourError(err, "Failed to track tour event", claims.UserID, tourID)
	}
	if err := h.TourService.TrackEvent(ctx, tourID, *req); err != nil {
		return tourError(err, "Failed to track tour event", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Analytics reports events over the range given by ?range=24h|7d|30d (default 7d)
func (h *TourHandler) Analytics(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	report, err := h.TourService.GetTourAnalytics(c.Request().Context(), claims.UserID, tourID, c.QueryParam("range"))
	if err != nil {
		return tourError(err, "Failed to get tour analytics", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *TourHandler) Funnel(c echo.Context) error {
	claims, err := getClaimsFromContext(c)
	if err != nil {
		return err
	}
	tourID, err := tourIDParam(c)
	if err != nil {
		return err
	}
	funnel, err := h.TourService.GetFunnel(c.Request().Context(), claims.UserID, tourID)
	if err != nil {
		return tourError(err, "Failed to get tour funnel", claims.UserID, tourID)
	}
	return c.JSON(http.StatusOK, funnel)
}
