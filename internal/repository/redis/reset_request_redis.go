package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

const (
	resetRequestPrefix = "pwreset:"
	// expired records stay readable for a while so verify can report them as expired
	defaultExpiredRetention = time.Hour
	maxWatchRetries         = 10
)

var _ repository.ResetRequestRepository = (*RedisResetRequestRepository)(nil)

// RedisResetRequestRepository implements ResetRequestRepository using Redis.
// Each email maps to one JSON document; the key TTL follows the record's expiry.
type RedisResetRequestRepository struct {
	client    *redis.Client
	retention time.Duration
}

// resetRecord is the persisted shape, timestamps in epoch milliseconds.
type resetRecord struct {
	Email      string `json:"email"`
	Code       string `json:"code"`
	CreatedAt  int64  `json:"createdAt"`
	ExpiresAt  int64  `json:"expiresAt"`
	Attempts   int    `json:"attempts"`
	VerifiedAt *int64 `json:"verifiedAt,omitempty"`
	TicketID   string `json:"ticketId,omitempty"`
}

// NewRedisResetRequestRepository creates a new Redis-backed reset request repository.
// retention is how long a record outlives its expiry; zero selects the default.
func NewRedisResetRequestRepository(client *redis.Client, retention time.Duration) *RedisResetRequestRepository {
	if retention <= 0 {
		retention = defaultExpiredRetention
	}
	return &RedisResetRequestRepository{
		client:    client,
		retention: retention,
	}
}

func makeResetRequestKey(email string) string {
	return resetRequestPrefix + email
}

func toRecord(req *models.ResetRequest) resetRecord {
	rec := resetRecord{
		Email:     req.Email,
		Code:      req.Code,
		CreatedAt: req.CreatedAt.UnixMilli(),
		ExpiresAt: req.ExpiresAt.UnixMilli(),
		Attempts:  req.Attempts,
		TicketID:  req.TicketID,
	}
	if req.VerifiedAt != nil {
		ms := req.VerifiedAt.UnixMilli()
		rec.VerifiedAt = &ms
	}
	return rec
}

func (rec resetRecord) toModel() *models.ResetRequest {
	req := &models.ResetRequest{
		Email:     rec.Email,
		Code:      rec.Code,
		CreatedAt: time.UnixMilli(rec.CreatedAt).UTC(),
		ExpiresAt: time.UnixMilli(rec.ExpiresAt).UTC(),
		Attempts:  rec.Attempts,
		TicketID:  rec.TicketID,
	}
	if rec.VerifiedAt != nil {
		at := time.UnixMilli(*rec.VerifiedAt).UTC()
		req.VerifiedAt = &at
	}
	return req
}

func (r *RedisResetRequestRepository) ttlFor(expiresAtMs int64) time.Duration {
	return max(time.Until(time.UnixMilli(expiresAtMs))+r.retention, time.Second)
}

// UpsertResetRequest overwrites whatever is stored for the email.
func (r *RedisResetRequestRepository) UpsertResetRequest(ctx context.Context, req *models.ResetRequest) error {
	if req == nil || req.Email == "" {
		return errors.New("invalid reset request: email must be set")
	}
	rec := toRecord(req)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal reset request: %w", err)
	}

	if err := r.client.Set(ctx, makeResetRequestKey(req.Email), data, r.ttlFor(rec.ExpiresAt)).Err(); err != nil {
		return fmt.Errorf("failed to store reset request in redis: %w", err)
	}
	return nil
}

func (r *RedisResetRequestRepository) GetResetRequest(ctx context.Context, email string) (*models.ResetRequest, error) {
	data, err := r.client.Get(ctx, makeResetRequestKey(email)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrResetRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reset request from redis: %w", err)
	}

	var rec resetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reset request: %w", err)
	}
	return rec.toModel(), nil
}

// update runs fn against the stored record inside WATCH/MULTI and writes the result back.
// If fn returns keep=false the key is deleted instead.
func (r *RedisResetRequestRepository) update(ctx context.Context, email string, fn func(rec *resetRecord) (keep bool, err error)) error {
	key := makeResetRequestKey(email)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return repository.ErrResetRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve reset request from redis: %w", err)
		}

		var rec resetRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal reset request: %w", err)
		}

		keep, err := fn(&rec)
		if err != nil {
			return err
		}

		var encoded []byte
		if keep {
			if encoded, err = json.Marshal(rec); err != nil {
				return fmt.Errorf("failed to marshal reset request: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if keep {
				pipe.Set(ctx, key, encoded, r.ttlFor(rec.ExpiresAt))
			} else {
				pipe.Del(ctx, key)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("reset request for %s kept changing, giving up after %d retries", email, maxWatchRetries)
}

// MarkVerified stamps the ticket only if the watched record still holds code.
func (r *RedisResetRequestRepository) MarkVerified(ctx context.Context, email string, code string, ticketID string, verifiedAt time.Time) error {
	return r.update(ctx, email, func(rec *resetRecord) (bool, error) {
		if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
			return true, repository.ErrResetRequestNotFound
		}
		ms := verifiedAt.UnixMilli()
		rec.VerifiedAt = &ms
		rec.TicketID = ticketID
		return true, nil
	})
}

func (r *RedisResetRequestRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	var attempts int
	err := r.update(ctx, email, func(rec *resetRecord) (bool, error) {
		rec.Attempts++
		attempts = rec.Attempts
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

// ConsumeResetRequest deletes the record in the same transaction that checked its ticket.
func (r *RedisResetRequestRepository) ConsumeResetRequest(ctx context.Context, email string, ticketID string) error {
	return r.update(ctx, email, func(rec *resetRecord) (bool, error) {
		if ticketID == "" || rec.TicketID != ticketID {
			return true, repository.ErrResetRequestNotFound
		}
		return false, nil
	})
}

func (r *RedisResetRequestRepository) DeleteResetRequest(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, makeResetRequestKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete reset request from redis: %w", err)
	}
	return nil
}
