package models

import "time"

// Tour event types sent by the widget and the dashboard
const (
	EventView     = "view"
	EventStart    = "start"
	EventComplete = "complete"
	EventSkip     = "skip"
	EventStepView = "step_view"
)

// Step positions relative to the highlighted element
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
	PositionLeft   = "left"
	PositionRight  = "right"
	PositionCenter = "center"
)

type Tour struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"-"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsActive    bool          `json:"isActive"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Steps       []TourStep    `json:"steps"`
	Analytics   TourAnalytics `json:"analytics"`
}

type TourStep struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Order          int    `json:"order"`
	TargetSelector string `json:"targetSelector,omitempty"`
	Position       string `json:"position,omitempty"`
}

// TourAnalytics are the running counters kept per tour.
type TourAnalytics struct {
	Views             int64      `json:"views"`
	Completions       int64      `json:"completions"`
	Skips             int64      `json:"skips"`
	AvgCompletionRate float64    `json:"avgCompletionRate"`
	LastUpdated       *time.Time `json:"lastUpdated,omitempty"`
}

// CompletionRate is completions per view in percent, counting at least one view.
func (a TourAnalytics) CompletionRate() float64 {
	views := a.Views
	if views < 1 {
		views = 1
	}
	return float64(a.Completions) / float64(views) * 100
}

type TourEvent struct {
	TourID    int64     `json:"tourId"`
	EventType string    `json:"eventType"`
	StepID    string    `json:"stepId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	VisitorID string    `json:"visitorId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TourPatch is a partial tour update. Nil fields are left alone.
type TourPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type CreateTourRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type SaveStepsRequest struct {
	Steps []TourStep `json:"steps"`
}

type TrackEventRequest struct {
	EventType string `json:"eventType" validate:"required"`
	StepID    string `json:"stepId"`
	SessionID string `json:"sessionId"`
	VisitorID string `json:"visitorId"`
}

// PublicTour is the widget view of an active tour
type PublicTour struct {
	TourID      int64            `json:"tourId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Steps       []PublicTourStep `json:"steps"`
}

type PublicTourStep struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Target      string `json:"target,omitempty"`
	Placement   string `json:"placement"`
}

type AnalyticsOverview struct {
	TotalViews         int     `json:"totalViews"`
	TotalCompletions   int     `json:"totalCompletions"`
	TotalSkips         int     `json:"totalSkips"`
	CompletionRate     float64 `json:"completionRate"`
	SkipRate           float64 `json:"skipRate"`
	UniqueVisitors     int     `json:"uniqueVisitors"`
	UniqueSessions     int     `json:"uniqueSessions"`
	AvgSessionDuration float64 `json:"avgSessionDuration"` // milliseconds
}

type StepMetric struct {
	StepID         string  `json:"stepId"`
	Views          int     `json:"views"`
	Completions    int     `json:"completions"`
	Skips          int     `json:"skips"`
	CompletionRate float64 `json:"completionRate"`
}

type DailyStat struct {
	Date        string `json:"date"` // YYYY-MM-DD, UTC
	Views       int    `json:"views"`
	Completions int    `json:"completions"`
	Skips       int    `json:"skips"`
}

type TourAnalyticsReport struct {
	Overview       AnalyticsOverview `json:"overview"`
	StepMetrics    []StepMetric      `json:"stepMetrics"`
	DailyBreakdown []DailyStat       `json:"dailyBreakdown"`
}

type FunnelStep struct {
	StepID    string `json:"stepId"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Viewed    int    `json:"viewed"`
	Completed int    `json:"completed"`
}
