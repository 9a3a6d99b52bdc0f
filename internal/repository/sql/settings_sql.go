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

var _ repository.SettingsRepository = (*SQLSettingsRepository)(nil)

// SQLSettingsRepository keeps user_settings rows. The table is created by SQLUserRepository.Migrate.
type SQLSettingsRepository struct {
	db *sqlx.DB
}

type settingsRow struct {
	EmailNotifications bool      `db:"email_notifications"`
	WeeklyReport       bool      `db:"weekly_report"`
	DefaultShowAvatar  bool      `db:"default_show_avatar"`
	DefaultAutoStart   bool      `db:"default_auto_start"`
	Theme              string    `db:"theme"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r settingsRow) toModel() *models.UserSettings {
	updatedAt := r.UpdatedAt.UTC()
	return &models.UserSettings{
		EmailNotifications: r.EmailNotifications,
		WeeklyReport:       r.WeeklyReport,
		DefaultShowAvatar:  r.DefaultShowAvatar,
		DefaultAutoStart:   r.DefaultAutoStart,
		Theme:              r.Theme,
		UpdatedAt:          &updatedAt,
	}
}

func NewSQLSettingsRepository(db *sqlx.DB) *SQLSettingsRepository {
	return &SQLSettingsRepository{db: db}
}

const selectSettings = `
        SELECT email_notifications, weekly_report, default_show_avatar, default_auto_start, theme, updated_at
        FROM user_settings
        WHERE user_id = ?
    `

func (r *SQLSettingsRepository) getSettings(ctx context.Context, q sqlx.QueryerContext, query string, userID int64) (*models.UserSettings, error) {
	var row settingsRow
	err := sqlx.GetContext(ctx, q, &row, r.db.Rebind(query), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user settings: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLSettingsRepository) GetSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	return r.getSettings(ctx, r.db, selectSettings, userID)
}

func (r *SQLSettingsRepository) UpdateSettings(ctx context.Context, userID int64, fn func(s *models.UserSettings) error) (*models.UserSettings, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := selectSettings
	if r.db.DriverName() != "sqlite3" {
		query += " FOR UPDATE"
	}
	current, err := r.getSettings(ctx, tx, query, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		defaults := models.DefaultUserSettings()
		current = &defaults
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	const upsert = `
        INSERT INTO user_settings (user_id, email_notifications, weekly_report, default_show_avatar, default_auto_start, theme, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE
        SET email_notifications = excluded.email_notifications,
            weekly_report = excluded.weekly_report,
            default_show_avatar = excluded.default_show_avatar,
            default_auto_start = excluded.default_auto_start,
            theme = excluded.theme,
            updated_at = excluded.updated_at
    `
	if _, err := tx.ExecContext(ctx, tx.Rebind(upsert),
		userID, current.EmailNotifications, current.WeeklyReport, current.DefaultShowAvatar,
		current.DefaultAutoStart, current.Theme, now,
	); err != nil {
		return nil, fmt.Errorf("failed to save user settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user settings: %w", err)
	}

	current.UpdatedAt = &now
	return current, nil
}
