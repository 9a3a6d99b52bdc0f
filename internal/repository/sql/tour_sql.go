package sql_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

var sqliteTourSchema = []string{
	`CREATE TABLE IF NOT EXISTS tours (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tours_user ON tours (user_id)`,
	`CREATE TABLE IF NOT EXISTS tour_steps (
		tour_id INTEGER NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		step_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		step_order INTEGER NOT NULL,
		target_selector TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (tour_id, step_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tour_analytics (
		tour_id INTEGER PRIMARY KEY REFERENCES tours(id) ON DELETE CASCADE,
		views INTEGER NOT NULL DEFAULT 0,
		completions INTEGER NOT NULL DEFAULT 0,
		skips INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tour_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tour_id INTEGER NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		event_type TEXT NOT NULL,
		step_id TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL DEFAULT '',
		visitor_id TEXT NOT NULL DEFAULT '',
		occurred_at_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tour_events_tour_time ON tour_events (tour_id, occurred_at_ms)`,
}

var postgresTourSchema = []string{
	`CREATE TABLE IF NOT EXISTS tours (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tours_user ON tours (user_id)`,
	`CREATE TABLE IF NOT EXISTS tour_steps (
		tour_id BIGINT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		step_id VARCHAR(64) NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		step_order INTEGER NOT NULL,
		target_selector TEXT NOT NULL DEFAULT '',
		position VARCHAR(16) NOT NULL DEFAULT '',
		PRIMARY KEY (tour_id, step_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tour_analytics (
		tour_id BIGINT PRIMARY KEY REFERENCES tours(id) ON DELETE CASCADE,
		views BIGINT NOT NULL DEFAULT 0,
		completions BIGINT NOT NULL DEFAULT 0,
		skips BIGINT NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tour_events (
		id BIGSERIAL PRIMARY KEY,
		tour_id BIGINT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
		event_type VARCHAR(16) NOT NULL,
		step_id VARCHAR(64) NOT NULL DEFAULT '',
		session_id VARCHAR(128) NOT NULL DEFAULT '',
		visitor_id VARCHAR(128) NOT NULL DEFAULT '',
		occurred_at_ms BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tour_events_tour_time ON tour_events (tour_id, occurred_at_ms)`,
}

var _ repository.TourRepository = (*SQLTourRepository)(nil)

// SQLTourRepository implements TourRepository on top of sqlx.
// Event timestamps are stored as epoch milliseconds so range scans compare integers on every driver.
type SQLTourRepository struct {
	db *sqlx.DB
}

type tourRow struct {
	ID          int64         `db:"id"`
	UserID      int64         `db:"user_id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	IsActive    bool          `db:"is_active"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
	Views       sql.NullInt64 `db:"views"`
	Completions sql.NullInt64 `db:"completions"`
	Skips       sql.NullInt64 `db:"skips"`
	LastUpdated sql.NullTime  `db:"last_updated"`
}

func (r tourRow) toModel() *models.Tour {
	analytics := models.TourAnalytics{
		Views:       r.Views.Int64,
		Completions: r.Completions.Int64,
		Skips:       r.Skips.Int64,
	}
	if r.LastUpdated.Valid {
		at := r.LastUpdated.Time.UTC()
		analytics.LastUpdated = &at
	}
	if analytics.Views > 0 || analytics.Completions > 0 {
		analytics.AvgCompletionRate = analytics.CompletionRate()
	}
	return &models.Tour{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Steps:       []models.TourStep{},
		Analytics:   analytics,
	}
}

type stepRow struct {
	TourID         int64  `db:"tour_id"`
	StepID         string `db:"step_id"`
	Title          string `db:"title"`
	Description    string `db:"description"`
	Order          int    `db:"step_order"`
	TargetSelector string `db:"target_selector"`
	Position       string `db:"position"`
}

type eventRow struct {
	TourID     int64  `db:"tour_id"`
	EventType  string `db:"event_type"`
	StepID     string `db:"step_id"`
	SessionID  string `db:"session_id"`
	VisitorID  string `db:"visitor_id"`
	OccurredAt int64  `db:"occurred_at_ms"`
}

func NewSQLTourRepository(db *sqlx.DB) *SQLTourRepository {
	return &SQLTourRepository{db: db}
}

// Migrate creates the tour tables. The users table must exist first.
func (r *SQLTourRepository) Migrate(ctx context.Context) error {
	schema := sqliteTourSchema
	if r.db.DriverName() != "sqlite3" {
		schema = postgresTourSchema
	}
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate tour tables: %w", err)
		}
	}
	return nil
}

func (r *SQLTourRepository) CreateTour(ctx context.Context, tour *models.Tour) (*models.Tour, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO tours (user_id, name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		tour.UserID, tour.Name, tour.Description, tour.IsActive, tour.CreatedAt, tour.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO tour_analytics (tour_id, views, completions, skips, last_updated) VALUES (?, 0, 0, 0, ?)`),
		id, tour.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to initialize tour analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tour creation: %w", err)
	}

	created := *tour
	created.ID = id
	created.Steps = []models.TourStep{}
	lastUpdated := tour.CreatedAt
	created.Analytics = models.TourAnalytics{LastUpdated: &lastUpdated}
	return &created, nil
}

const selectTour = `
        SELECT t.id, t.user_id, t.name, t.description, t.is_active, t.created_at, t.updated_at,
               a.views, a.completions, a.skips, a.last_updated
        FROM tours t
        LEFT JOIN tour_analytics a ON a.tour_id = t.id
    `

func (r *SQLTourRepository) GetTour(ctx context.Context, tourID int64) (*models.Tour, error) {
	var row tourRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(selectTour+"WHERE t.id = ?"), tourID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrTourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed for tour: %w", err)
	}

	tour := row.toModel()
	if err := r.attachSteps(ctx, []*models.Tour{tour}); err != nil {
		return nil, err
	}
	return tour, nil
}

func (r *SQLTourRepository) ListToursByUser(ctx context.Context, userID int64) ([]*models.Tour, error) {
	var rows []tourRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(selectTour+"WHERE t.user_id = ? ORDER BY t.created_at DESC, t.id DESC"), userID); err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	tours := make([]*models.Tour, 0, len(rows))
	for _, row := range rows {
		tours = append(tours, row.toModel())
	}
	if err := r.attachSteps(ctx, tours); err != nil {
		return nil, err
	}
	return tours, nil
}

// attachSteps loads the steps of all tours with one query.
func (r *SQLTourRepository) attachSteps(ctx context.Context, tours []*models.Tour) error {
	if len(tours) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Tour, len(tours))
	ids := make([]int64, 0, len(tours))
	for _, t := range tours {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query, args, err := sqlx.In(`
        SELECT tour_id, step_id, title, description, step_order, target_selector, position
        FROM tour_steps
        WHERE tour_id IN (?)
        ORDER BY tour_id, step_order, step_id
    `, ids)
	if err != nil {
		return fmt.Errorf("failed to build step query: %w", err)
	}

	var rows []stepRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load tour steps: %w", err)
	}
	for _, s := range rows {
		t := byID[s.TourID]
		t.Steps = append(t.Steps, models.TourStep{
			ID:             s.StepID,
			Title:          s.Title,
			Description:    s.Description,
			Order:          s.Order,
			TargetSelector: s.TargetSelector,
			Position:       s.Position,
		})
	}
	return nil
}

func (r *SQLTourRepository) UpdateTour(ctx context.Context, tourID int64, patch models.TourPatch, updatedAt time.Time) error {
	const query = `
        UPDATE tours
        SET name = COALESCE(?, name),
            description = COALESCE(?, description),
            is_active = COALESCE(?, is_active),
            updated_at = ?
        WHERE id = ?
    `
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), patch.Name, patch.Description, patch.IsActive, updatedAt, tourID)
	if err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrTourNotFound
	}
	return nil
}

func (r *SQLTourRepository) DeleteTour(ctx context.Context, tourID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"tour_steps", "tour_events", "tour_analytics"} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE tour_id = ?`), tourID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tours WHERE id = ?`), tourID)
	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrTourNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tour deletion: %w", err)
	}
	return nil
}

func (r *SQLTourRepository) ReplaceSteps(ctx context.Context, tourID int64, steps []models.TourStep, updatedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE tours SET updated_at = ? WHERE id = ?`), updatedAt, tourID)
	if err != nil {
		return fmt.Errorf("failed to touch tour: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrTourNotFound
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tour_steps WHERE tour_id = ?`), tourID); err != nil {
		return fmt.Errorf("failed to clear tour steps: %w", err)
	}

	insert := tx.Rebind(`
        INSERT INTO tour_steps (tour_id, step_id, title, description, step_order, target_selector, position)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `)
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, insert, tourID, s.ID, s.Title, s.Description, s.Order, s.TargetSelector, s.Position); err != nil {
			return fmt.Errorf("failed to insert tour step %q: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tour steps: %w", err)
	}
	return nil
}

func (r *SQLTourRepository) RecordEvent(ctx context.Context, event *models.TourEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(1) FROM tours WHERE id = ?`), event.TourID); err != nil {
		return fmt.Errorf("failed to check tour: %w", err)
	}
	if exists == 0 {
		return repository.ErrTourNotFound
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO tour_events (tour_id, event_type, step_id, session_id, visitor_id, occurred_at_ms)
        VALUES (?, ?, ?, ?, ?, ?)
    `), event.TourID, event.EventType, event.StepID, event.SessionID, event.VisitorID, event.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("failed to record tour event: %w", err)
	}

	var views, completions, skips int
	switch event.EventType {
	case models.EventView:
		views = 1
	case models.EventComplete:
		completions = 1
	case models.EventSkip:
		skips = 1
	}
	// counters are bumped in SQL so concurrent events never lose an increment
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
        INSERT INTO tour_analytics (tour_id, views, completions, skips, last_updated)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (tour_id) DO UPDATE
        SET views = tour_analytics.views + excluded.views,
            completions = tour_analytics.completions + excluded.completions,
            skips = tour_analytics.skips + excluded.skips,
            last_updated = excluded.last_updated
    `), event.TourID, views, completions, skips, event.Timestamp); err != nil {
		return fmt.Errorf("failed to update tour analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tour event: %w", err)
	}
	return nil
}

func (r *SQLTourRepository) ListEvents(ctx context.Context, tourID int64, since time.Time) ([]models.TourEvent, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
        SELECT tour_id, event_type, step_id, session_id, visitor_id, occurred_at_ms
        FROM tour_events
        WHERE tour_id = ? AND occurred_at_ms >= ?
        ORDER BY occurred_at_ms, id
    `), tourID, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to list tour events: %w", err)
	}

	events := make([]models.TourEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, models.TourEvent{
			TourID:    row.TourID,
			EventType: row.EventType,
			StepID:    row.StepID,
			SessionID: row.SessionID,
			VisitorID: row.VisitorID,
			Timestamp: time.UnixMilli(row.OccurredAt).UTC(),
		})
	}
	return events, nil
}
