package service

import (
	"math"
	"time"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
)

const (
	day = 24 * time.Hour
	// longer spans are treated as abandoned sessions
	maxSessionDuration = time.Hour
)

var timeRanges = map[string]time.Duration{
	"24h": day,
	"7d":  7 * day,
	"30d": 30 * day,
}

// parseTimeRange defaults to 7d.
func parseTimeRange(r string) (time.Duration, error) {
	if r == "" {
		r = "7d"
	}
	d, ok := timeRanges[r]
	if !ok {
		return 0, ErrInvalidTimeRange
	}
	return d, nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// buildAnalyticsReport aggregates the events that happened in [start, end).
func buildAnalyticsReport(events []models.TourEvent, start, end time.Time) *models.TourAnalyticsReport {
	var views, completions, skips int
	visitors := make(map[string]struct{})
	sessions := make(map[string]struct{})
	for _, e := range events {
		switch e.EventType {
		case models.EventView:
			views++
		case models.EventComplete:
			completions++
		case models.EventSkip:
			skips++
		}
		if e.VisitorID != "" {
			visitors[e.VisitorID] = struct{}{}
		}
		if e.SessionID != "" {
			sessions[e.SessionID] = struct{}{}
		}
	}

	var avgSession float64
	if durations := sessionDurations(events); len(durations) > 0 {
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		avgSession = float64(total.Milliseconds()) / float64(len(durations))
	}

	return &models.TourAnalyticsReport{
		Overview: models.AnalyticsOverview{
			TotalViews:         views,
			TotalCompletions:   completions,
			TotalSkips:         skips,
			CompletionRate:     percent(completions, views),
			SkipRate:           percent(skips, views),
			UniqueVisitors:     len(visitors),
			UniqueSessions:     len(sessions),
			AvgSessionDuration: avgSession,
		},
		StepMetrics:    stepMetrics(events),
		DailyBreakdown: dailyBreakdown(events, start, end),
	}
}

// stepMetrics lists steps in the order they first appear in events.
func stepMetrics(events []models.TourEvent) []models.StepMetric {
	index := make(map[string]int)
	metrics := []models.StepMetric{}
	for _, e := range events {
		if e.StepID == "" {
			continue
		}
		i, ok := index[e.StepID]
		if !ok {
			i = len(metrics)
			index[e.StepID] = i
			metrics = append(metrics, models.StepMetric{StepID: e.StepID})
		}
		switch e.EventType {
		case models.EventStepView:
			metrics[i].Views++
		case models.EventComplete:
			metrics[i].Completions++
		case models.EventSkip:
			metrics[i].Skips++
		}
	}
	for i := range metrics {
		metrics[i].CompletionRate = percent(metrics[i].Completions, metrics[i].Views)
	}
	return metrics
}

func dailyBreakdown(events []models.TourEvent, start, end time.Time) []models.DailyStat {
	days := int(math.Ceil(float64(end.Sub(start)) / float64(day)))
	breakdown := make([]models.DailyStat, 0, days)
	for i := 0; i < days; i++ {
		dayStart := start.Add(time.Duration(i) * day)
		dayEnd := dayStart.Add(day)
		stat := models.DailyStat{Date: dayStart.UTC().Format("2006-01-02")}
		for _, e := range events {
			if e.Timestamp.Before(dayStart) || !e.Timestamp.Before(dayEnd) {
				continue
			}
			switch e.EventType {
			case models.EventView:
				stat.Views++
			case models.EventComplete:
				stat.Completions++
			case models.EventSkip:
				stat.Skips++
			}
		}
		breakdown = append(breakdown, stat)
	}
	return breakdown
}

// sessionDurations returns first-to-last spans of sessions that lasted more than zero and under an hour.
func sessionDurations(events []models.TourEvent) []time.Duration {
	type span struct{ first, last time.Time }
	spans := make(map[string]*span)
	for _, e := range events {
		if e.SessionID == "" {
			continue
		}
		sp, ok := spans[e.SessionID]
		if !ok {
			spans[e.SessionID] = &span{first: e.Timestamp, last: e.Timestamp}
			continue
		}
		if e.Timestamp.Before(sp.first) {
			sp.first = e.Timestamp
		}
		if e.Timestamp.After(sp.last) {
			sp.last = e.Timestamp
		}
	}

	durations := make([]time.Duration, 0, len(spans))
	for _, sp := range spans {
		if d := sp.last.Sub(sp.first); d > 0 && d < maxSessionDuration {
			durations = append(durations, d)
		}
	}
	return durations
}

// buildFunnel counts, per step, the sessions that viewed it and the sessions that completed on it.
func buildFunnel(steps []models.TourStep, events []models.TourEvent) []models.FunnelStep {
	type key struct{ session, step string }
	viewed := make(map[key]struct{})
	completed := make(map[key]struct{})
	for _, e := range events {
		if e.SessionID == "" || e.StepID == "" {
			continue
		}
		k := key{e.SessionID, e.StepID}
		switch e.EventType {
		case models.EventStepView:
			viewed[k] = struct{}{}
		case models.EventComplete:
			completed[k] = struct{}{}
		}
	}

	count := func(set map[key]struct{}, stepID string) int {
		n := 0
		for k := range set {
			if k.step == stepID {
				n++
			}
		}
		return n
	}

	funnel := make([]models.FunnelStep, 0, len(steps))
	for _, s := range steps {
		funnel = append(funnel, models.FunnelStep{
			StepID:    s.ID,
			Title:     s.Title,
			Order:     s.Order,
			Viewed:    count(viewed, s.ID),
			Completed: count(completed, s.ID),
		})
	}
	return funnel
}
