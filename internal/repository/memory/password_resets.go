package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/staffsync/staffsync-api/internal/domain"
)

type passwordResetRepository struct {
	s *Store
}

func (r *passwordResetRepository) Create(_ context.Context, reset *domain.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reset.ID = uuid.NewString()
	reset.Attempts = 0
	reset.CreatedAt = r.s.now()
	r.s.resets = append(r.s.resets, *reset)
	return nil
}

func (r *passwordResetRepository) GetLatest(_ context.Context, memberID string) (*domain.PasswordReset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	// newest last
	for i := len(r.s.resets) - 1; i >= 0; i-- {
		reset := r.s.resets[i]
		if reset.MemberID == memberID && reset.UsedAt == nil {
			return &reset, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *passwordResetRepository) IncrementAttempts(_ context.Context, id string) error {
	return r.update(id, func(reset *domain.PasswordReset) { reset.Attempts++ })
}

func (r *passwordResetRepository) MarkUsed(_ context.Context, id string) error {
	now := r.s.now()
	return r.update(id, func(reset *domain.PasswordReset) { reset.UsedAt = &now })
}

func (r *passwordResetRepository) update(id string, fn func(*domain.PasswordReset)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.resets {
		if r.s.resets[i].ID == id {
			fn(&r.s.resets[i])
			return nil
		}
	}
	return pgx.ErrNoRows
}
