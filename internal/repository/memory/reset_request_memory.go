package memory

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/ZenGuideTeam/zg-account-server/internal/models"
	"github.com/ZenGuideTeam/zg-account-server/internal/repository"
)

var _ repository.ResetRequestRepository = (*MemoryResetRequestRepository)(nil)

// MemoryResetRequestRepository implements ResetRequestRepository in memory.
// NOT FOR PRODUCTION use.
type MemoryResetRequestRepository struct {
	requests map[string]models.ResetRequest
	mutex    sync.RWMutex
}

// NewMemoryResetRequestRepository creates a new in-memory reset request repository.
func NewMemoryResetRequestRepository() *MemoryResetRequestRepository {
	return &MemoryResetRequestRepository{
		requests: make(map[string]models.ResetRequest),
	}
}

// UpsertResetRequest saves the record, overwriting any previous record for the email.
func (r *MemoryResetRequestRepository) UpsertResetRequest(ctx context.Context, req *models.ResetRequest) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.requests[req.Email] = copyRequest(*req)
	return nil
}

// GetResetRequest returns a copy of the stored record.
func (r *MemoryResetRequestRepository) GetResetRequest(ctx context.Context, email string) (*models.ResetRequest, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, exists := r.requests[email]
	if !exists {
		return nil, repository.ErrResetRequestNotFound
	}
	out := copyRequest(entry)
	return &out, nil
}

// MarkVerified stamps the ticket only if the record still holds code.
func (r *MemoryResetRequestRepository) MarkVerified(ctx context.Context, email string, code string, ticketID string, verifiedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.requests[email]
	if !exists || subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return repository.ErrResetRequestNotFound
	}
	at := verifiedAt.UTC()
	entry.VerifiedAt = &at
	entry.TicketID = ticketID
	r.requests[email] = entry
	return nil
}

func (r *MemoryResetRequestRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.requests[email]
	if !exists {
		return 0, repository.ErrResetRequestNotFound
	}
	entry.Attempts++
	r.requests[email] = entry
	return entry.Attempts, nil
}

// ConsumeResetRequest deletes the record if it still carries the given ticket ID.
func (r *MemoryResetRequestRepository) ConsumeResetRequest(ctx context.Context, email string, ticketID string) error {
	r.mutex.Lock() // Lock for read and delete
	defer r.mutex.Unlock()

	entry, exists := r.requests[email]
	if !exists || ticketID == "" || entry.TicketID != ticketID {
		return repository.ErrResetRequestNotFound
	}
	delete(r.requests, email)
	return nil
}

func (r *MemoryResetRequestRepository) DeleteResetRequest(ctx context.Context, email string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.requests, email)
	return nil
}

// CleanupExpired drops every record whose code expired before the cutoff.
// It returns the number of records removed.
func (r *MemoryResetRequestRepository) CleanupExpired(cutoff time.Time) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for email, entry := range r.requests {
		if cutoff.After(entry.ExpiresAt) {
			delete(r.requests, email)
			removed++
		}
	}
	return removed
}

func copyRequest(in models.ResetRequest) models.ResetRequest {
	out := in
	if in.VerifiedAt != nil {
		at := *in.VerifiedAt
		out.VerifiedAt = &at
	}
	return out
}
