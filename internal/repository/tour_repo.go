package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

var ErrTourNotFound = errors.New("tour not found")

// TourRepository stores tours, their steps, counters and raw events.
// Ownership is checked by the caller.
type TourRepository interface {
	// CreateTour inserts the tour with a zeroed analytics row and returns it with its ID.
	CreateTour(ctx context.Context, tour *models.Tour) (*models.Tour, error)

	// GetTour returns the tour with ordered steps and counters, or ErrTourNotFound.
	GetTour(ctx context.Context, tourID int64) (*models.Tour, error)

	// ListToursByUser returns the user's tours, newest first, with steps and counters.
	ListToursByUser(ctx context.Context, userID int64) ([]*models.Tour, error)

	UpdateTour(ctx context.Context, tourID int64, patch models.TourPatch, updatedAt time.Time) error

	// DeleteTour removes the tour with its steps, events and counters.
	DeleteTour(ctx context.Context, tourID int64) error

	// ReplaceSteps swaps the whole step list in one transaction.
	ReplaceSteps(ctx context.Context, tourID int64, steps []models.TourStep, updatedAt time.Time) error

	// RecordEvent stores the event and bumps the matching counter.
	// It should return ErrTourNotFound if the tour does not exist.
	RecordEvent(ctx context.Context, event *models.TourEvent) error

	// ListEvents returns the tour's events at or after since, oldest first.
	ListEvents(ctx context.Context, tourID int64, since time.Time) ([]models.TourEvent, error)
}
