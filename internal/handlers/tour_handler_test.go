package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ZenGuideTeam/zg-account-server/internal/handlers"
	"github.com/ZenGuideTeam/zg-account-server/internal/mocks"
	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/router"
	"github.com/ZenGuideTeam/zg-account-server/internal/server"
	"github.com/ZenGuideTeam/zg-account-server/internal/service"
)

func setupTourHandlerTest(t *testing.T, claims any) (*mocks.MockTourService, *echo.Echo) {
	t.Helper()
	svc := new(mocks.MockTourService)
	e := server.New()
	router.SetupTourRoutes(e, handlers.NewTourHandler(svc), withClaims(claims))
	router.SetupPublicTourRoutes(e, handlers.NewPublicTourHandler(svc), passThrough)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return svc, e
}

func TestTourHandler(t *testing.T) {
	claims := &models.AccessClaims{UserID: 5, RegisteredClaims: jwt.RegisteredClaims{Subject: "a@b.com"}}
	tour := &models.Tour{ID: 9, UserID: 5, Name: "Onboarding", Steps: []models.TourStep{}}

	t.Run("Create", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("CreateTour", mock.Anything, int64(5), models.CreateTourRequest{Name: "Onboarding"}).Return(tour, nil).Once()

		rec := performRequest(e, http.MethodPost, "/api/tours", `{"name":"Onboarding"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got models.Tour
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, int64(9), got.ID)
		assert.NotContains(t, rec.Body.String(), "userId")
	})

	t.Run("CreateWithoutName", func(t *testing.T) {
		_, e := setupTourHandlerTest(t, claims)
		rec := performRequest(e, http.MethodPost, "/api/tours", `{"description":"no name"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("List", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("ListTours", mock.Anything, int64(5)).Return([]*models.Tour{tour}, nil).Once()

		rec := performRequest(e, http.MethodGet, "/api/tours", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("GetOtherUsersTour", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("GetTour", mock.Anything, int64(5), int64(10)).Return(nil, service.ErrTourNotFound).Once()

		rec := performRequest(e, http.MethodGet, "/api/tours/10", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, service.ErrTourNotFound.Error(), decodeError(t, rec))
	})

	t.Run("MalformedID", func(t *testing.T) {
		_, e := setupTourHandlerTest(t, claims)
		rec := performRequest(e, http.MethodGet, "/api/tours/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Update", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		active := true
		svc.On("UpdateTour", mock.Anything, int64(5), int64(9), models.TourPatch{IsActive: &active}).Return(tour, nil).Once()

		rec := performRequest(e, http.MethodPatch, "/api/tours/9", `{"isActive":true}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("DeleteTour", mock.Anything, int64(5), int64(9)).Return(nil).Once()

		rec := performRequest(e, http.MethodDelete, "/api/tours/9", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("SaveStepsInvalid", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("SaveSteps", mock.Anything, int64(5), int64(9), mock.Anything).
			Return(nil, fmt.Errorf("%w: duplicate step id %q", service.ErrInvalidTour, "s1")).Once()

		rec := performRequest(e, http.MethodPut, "/api/tours/9/steps", `{"steps":[{"id":"s1","title":"A"},{"id":"s1","title":"B"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `invalid tour: duplicate step id "s1"`, decodeError(t, rec))
	})

	t.Run("TrackEventChecksOwnership", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("GetTour", mock.Anything, int64(5), int64(10)).Return(nil, service.ErrTourNotFound).Once()

		rec := performRequest(e, http.MethodPost, "/api/tours/10/events", `{"eventType":"view"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertNotCalled(t, "TrackEvent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TrackEvent", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("GetTour", mock.Anything, int64(5), int64(9)).Return(tour, nil).Once()
		svc.On("TrackEvent", mock.Anything, int64(9), models.TrackEventRequest{EventType: "complete", SessionID: "s"}).Return(nil).Once()

		rec := performRequest(e, http.MethodPost, "/api/tours/9/events", `{"eventType":"complete","sessionId":"s"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AnalyticsRange", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("GetTourAnalytics", mock.Anything, int64(5), int64(9), "30d").
			Return(&models.TourAnalyticsReport{StepMetrics: []models.StepMetric{}, DailyBreakdown: []models.DailyStat{}}, nil).Once()

		rec := performRequest(e, http.MethodGet, "/api/tours/9/analytics?range=30d", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AnalyticsBadRange", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("GetTourAnalytics", mock.Anything, int64(5), int64(9), "1y").Return(nil, service.ErrInvalidTimeRange).Once()

		rec := performRequest(e, http.MethodGet, "/api/tours/9/analytics?range=1y", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("FunnelStoreFailure", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, claims)
		svc.On("GetFunnel", mock.Anything, int64(5), int64(9)).Return(nil, errors.New("db down")).Once()

		rec := performRequest(e, http.MethodGet, "/api/tours/9/funnel", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to get tour funnel", decodeError(t, rec))
	})

	t.Run("NoClaims", func(t *testing.T) {
		_, e := setupTourHandlerTest(t, nil)
		rec := performRequest(e, http.MethodGet, "/api/tours", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPublicTourHandler(t *testing.T) {
	t.Run("GetActiveTour", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, nil)
		svc.On("GetPublicTour", mock.Anything, int64(9)).
			Return(&models.PublicTour{TourID: 9, Name: "Onboarding", Steps: []models.PublicTourStep{{ID: "s1", Placement: "bottom"}}}, nil).Once()

		rec := performRequest(e, http.MethodGet, "/api/public/tours/9", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"placement":"bottom"`)
	})

	t.Run("InactiveTourIsHidden", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, nil)
		svc.On("GetPublicTour", mock.Anything, int64(9)).Return(nil, service.ErrTourNotFound).Once()

		rec := performRequest(e, http.MethodGet, "/api/public/tours/9", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("TrackWidgetEvent", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, nil)
		svc.On("GetPublicTour", mock.Anything, int64(9)).Return(&models.PublicTour{TourID: 9}, nil).Once()
		svc.On("TrackEvent", mock.Anything, int64(9), models.TrackEventRequest{EventType: "step_view", StepID: "s1"}).Return(nil).Once()

		rec := performRequest(e, http.MethodPost, "/api/public/tours/9/events", `{"eventType":"step_view","stepId":"s1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})

	t.Run("TrackWidgetEventInactiveTour", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, nil)
		svc.On("GetPublicTour", mock.Anything, int64(9)).Return(nil, service.ErrTourNotFound).Once()

		rec := performRequest(e, http.MethodPost, "/api/public/tours/9/events", `{"eventType":"view"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("TrackWidgetEventUnknownType", func(t *testing.T) {
		svc, e := setupTourHandlerTest(t, nil)
		svc.On("GetPublicTour", mock.Anything, int64(9)).Return(&models.PublicTour{TourID: 9}, nil).Once()
		svc.On("TrackEvent", mock.Anything, int64(9), mock.Anything).Return(service.ErrInvalidEventType).Once()

		rec := performRequest(e, http.MethodPost, "/api/public/tours/9/events", `{"eventType":"hover"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
