package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

const (
	maxTourNameLength        = 100
	maxTourDescriptionLength = 2000
	maxStepsPerTour          = 100
	maxStepIDLength          = 64
	maxStepTitleLength       = 200
)

var validPositions = map[string]bool{
	models.PositionTop:    true,
	models.PositionBottom: true,
	models.PositionLeft:   true,
	models.PositionRight:  true,
	models.PositionCenter: true,
}

var validEventTypes = map[string]bool{
	models.EventView:     true,
	models.EventStart:    true,
	models.EventComplete: true,
	models.EventSkip:     true,
	models.EventStepView: true,
}

var _ TourGenerator = (*TourService)(nil)

// TourService manages a user's tours and serves the widget and analytics views of them.
type TourService struct {
	tours repository.TourRepository
	now   func() time.Time
}

func NewTourService(tours repository.TourRepository) *TourService {
	return &TourService{
		tours: tours,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func validateTourName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxTourNameLength {
		return "", fmt.Errorf("%w: name must be 1 to %d characters", ErrInvalidTour, maxTourNameLength)
	}
	return name, nil
}

func validateTourDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxTourDescriptionLength {
		return "", fmt.Errorf("%w: description must be at most %d characters", ErrInvalidTour, maxTourDescriptionLength)
	}
	return description, nil
}

func validateSteps(steps []models.TourStep) ([]models.TourStep, error) {
	if len(steps) > maxStepsPerTour {
		return nil, fmt.Errorf("%w: at most %d steps", ErrInvalidTour, maxStepsPerTour)
	}
	seen := make(map[string]bool, len(steps))
	out := make([]models.TourStep, 0, len(steps))
	for _, s := range steps {
		s.ID = strings.TrimSpace(s.ID)
		s.Title = strings.TrimSpace(s.Title)
		switch {
		case s.ID == "" || len(s.ID) > maxStepIDLength:
			return nil, fmt.Errorf("%w: step id must be 1 to %d bytes", ErrInvalidTour, maxStepIDLength)
		case seen[s.ID]:
			return nil, fmt.Errorf("%w: duplicate step id %q", ErrInvalidTour, s.ID)
		case s.Title == "" || utf8.RuneCountInString(s.Title) > maxStepTitleLength:
			return nil, fmt.Errorf("%w: step title must be 1 to %d characters", ErrInvalidTour, maxStepTitleLength)
		case s.Position != "" && !validPositions[s.Position]:
			return nil, fmt.Errorf("%w: unknown step position %q", ErrInvalidTour, s.Position)
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out, nil
}

// owned loads the tour and hides tours of other users behind ErrTourNotFound.
func (s *TourService) owned(ctx context.Context, userID, tourID int64) (*models.Tour, error) {
	tour, err := s.tours.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, repository.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if tour.UserID != userID {
		return nil, ErrTourNotFound
	}
	return tour, nil
}

func (s *TourService) ListTours(ctx context.Context, userID int64) ([]*models.Tour, error) {
	tours, err := s.tours.ListToursByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}

func (s *TourService) GetTour(ctx context.Context, userID, tourID int64) (*models.Tour, error) {
	return s.owned(ctx, userID, tourID)
}

// CreateTour starts every tour inactive.
func (s *TourService) CreateTour(ctx context.Context, userID int64, req models.CreateTourRequest) (*models.Tour, error) {
	name, err := validateTourName(req.Name)
	if err != nil {
		return nil, err
	}
	description, err := validateTourDescription(req.Description)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tour, err := s.tours.CreateTour(ctx, &models.Tour{
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}

	log.Info().Int64("userID", userID).Int64("tourID", tour.ID).Msg("Tour created")
	return tour, nil
}

func (s *TourService) UpdateTour(ctx context.Context, userID, tourID int64, patch models.TourPatch) (*models.Tour, error) {
	if _, err := s.owned(ctx, userID, tourID); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name, err := validateTourName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Description != nil {
		description, err := validateTourDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		patch.Description = &description
	}

	if err := s.tours.UpdateTour(ctx, tourID, patch, s.now()); err != nil {
		if errors.Is(err, repository.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to update tour: %w", err)
	}
	return s.owned(ctx, userID, tourID)
}

func (s *TourService) DeleteTour(ctx context.Context, userID, tourID int64) error {
	if _, err := s.owned(ctx, userID, tourID); err != nil {
		return err
	}
	if err := s.tours.DeleteTour(ctx, tourID); err != nil {
		if errors.Is(err, repository.ErrTourNotFound) {
			return ErrTourNotFound
		}
		return fmt.Errorf("failed to delete tour: %w", err)
	}

	log.Info().Int64("userID", userID).Int64("tourID", tourID).Msg("Tour deleted")
	return nil
}

// SaveSteps replaces the step list as a whole.
func (s *TourService) SaveSteps(ctx context.Context, userID, tourID int64, steps []models.TourStep) (*models.Tour, error) {
	if _, err := s.owned(ctx, userID, tourID); err != nil {
		return nil, err
	}
	steps, err := validateSteps(steps)
	if err != nil {
		return nil, err
	}

	if err := s.tours.ReplaceSteps(ctx, tourID, steps, s.now()); err != nil {
		if errors.Is(err, repository.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to save tour steps: %w", err)
	}
	return s.owned(ctx, userID, tourID)
}

func (s *TourService) TrackEvent(ctx context.Context, tourID int64, req models.TrackEventRequest) error {
	if !validEventTypes[req.EventType] {
		return ErrInvalidEventType
	}

	err := s.tours.RecordEvent(ctx, &models.TourEvent{
		TourID:    tourID,
		EventType: req.EventType,
		StepID:    strings.TrimSpace(req.StepID),
		SessionID: strings.TrimSpace(req.SessionID),
		VisitorID: strings.TrimSpace(req.VisitorID),
		Timestamp: s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrTourNotFound) {
			return ErrTourNotFound
		}
		return fmt.Errorf("failed to record tour event: %w", err)
	}
	return nil
}

func (s *TourService) GetPublicTour(ctx context.Context, tourID int64) (*models.PublicTour, error) {
	tour, err := s.tours.GetTour(ctx, tourID)
	if err != nil {
		if errors.Is(err, repository.ErrTourNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if !tour.IsActive {
		return nil, ErrTourNotFound
	}

	steps := make([]models.PublicTourStep, 0, len(tour.Steps))
	for _, st := range tour.Steps {
		placement := st.Position
		if placement == "" {
			placement = models.PositionBottom
		}
		steps = append(steps, models.PublicTourStep{
			ID:          st.ID,
			Title:       st.Title,
			Description: st.Description,
			Order:       st.Order,
			Target:      st.TargetSelector,
			Placement:   placement,
		})
	}
	return &models.PublicTour{
		TourID:      tour.ID,
		Name:        tour.Name,
		Description: tour.Description,
		Steps:       steps,
	}, nil
}

func (s *TourService) GetTourAnalytics(ctx context.Context, userID, tourID int64, timeRange string) (*models.TourAnalyticsReport, error) {
	span, err := parseTimeRange(timeRange)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, tourID); err != nil {
		return nil, err
	}

	end := s.now()
	start := end.Add(-span)
	events, err := s.tours.ListEvents(ctx, tourID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour events: %w", err)
	}
	return buildAnalyticsReport(events, start, end), nil
}

func (s *TourService) GetFunnel(ctx context.Context, userID, tourID int64) ([]models.FunnelStep, error) {
	tour, err := s.owned(ctx, userID, tourID)
	if err != nil {
		return nil, err
	}
	events, err := s.tours.ListEvents(ctx, tourID, time.UnixMilli(0))
	if err != nil {
		return nil, fmt.Errorf("failed to load tour events: %w", err)
	}
	return buildFunnel(tour.Steps, events), nil
}
