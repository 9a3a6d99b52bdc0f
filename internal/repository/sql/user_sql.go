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

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_passwords (
		user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		password_hash TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		email_notifications BOOLEAN NOT NULL,
		weekly_report BOOLEAN NOT NULL,
		default_show_avatar BOOLEAN NOT NULL,
		default_auto_start BOOLEAN NOT NULL,
		theme TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(320) NOT NULL UNIQUE,
		display_name VARCHAR(63) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_passwords (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		password_hash TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		email_notifications BOOLEAN NOT NULL,
		weekly_report BOOLEAN NOT NULL,
		default_show_avatar BOOLEAN NOT NULL,
		default_auto_start BOOLEAN NOT NULL,
		theme VARCHAR(16) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

var _ repository.UserRepository = (*SQLUserRepository)(nil)

// SQLUserRepository implements UserRepository on top of sqlx.
// It speaks both sqlite3 and pgx; placeholders are rebound per driver.
type SQLUserRepository struct {
	db *sqlx.DB
}

type userRow struct {
	ID           int64          `db:"id"`
	Email        string         `db:"email"`
	DisplayName  string         `db:"display_name"`
	CreatedAt    time.Time      `db:"created_at"`
	PasswordHash sql.NullString `db:"password_hash"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PasswordHash: r.PasswordHash.String,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func NewSQLUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// Migrate creates the users, user_passwords and user_settings tables if they are missing.
func (r *SQLUserRepository) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if r.db.DriverName() != "sqlite3" {
		schema = postgresSchema
	}
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate user tables: %w", err)
		}
	}
	return nil
}

func (r *SQLUserRepository) CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(1) FROM users WHERE email = ?`), email); err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, repository.ErrUserExists
	}

	now := time.Now().UTC()
	var id int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO users (email, display_name, created_at) VALUES (?, ?, ?) RETURNING id`),
		email, displayName, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO user_passwords (user_id, password_hash, updated_at) VALUES (?, ?, ?)`),
		id, passwordHash, now,
	); err != nil {
		return nil, fmt.Errorf("failed to store user credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

func (r *SQLUserRepository) CheckIfUserExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(1) FROM users WHERE email = ?`), email); err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}
	return count > 0, nil
}

const selectUser = `
        SELECT u.id, u.email, u.display_name, u.created_at, p.password_hash
        FROM users u
        LEFT JOIN user_passwords p ON p.user_id = u.id
    `

func (r *SQLUserRepository) getUser(ctx context.Context, q sqlx.QueryerContext, where string, arg any) (*models.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, q, &row, r.db.Rebind(selectUser+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed for user: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, r.db, "WHERE u.email = ?", email)
}

func (r *SQLUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return r.getUser(ctx, r.db, "WHERE u.id = ?", userID)
}

// UpdateProfile checks the email is free and writes both fields in one transaction.
func (r *SQLUserRepository) UpdateProfile(ctx context.Context, userID int64, email, displayName string) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var taken int
	if err := tx.GetContext(ctx, &taken, tx.Rebind(`SELECT COUNT(1) FROM users WHERE email = ? AND id <> ?`), email, userID); err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken > 0 {
		return nil, repository.ErrUserExists
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET email = ?, display_name = ? WHERE id = ?`), email, displayName, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrUserNotFound
	}

	user, err := r.getUser(ctx, tx, "WHERE u.id = ?", userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit profile update: %w", err)
	}
	return user, nil
}

// UpsertPasswordHash inserts the credential row or replaces the stored hash.
func (r *SQLUserRepository) UpsertPasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	const query = `
        INSERT INTO user_passwords (user_id, password_hash, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE
        SET password_hash = excluded.password_hash,
            updated_at = excluded.updated_at
    `
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), userID, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert password hash: %w", err)
	}
	return nil
}
