package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// PasswordResetRepository manages one-time reset code persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	// GetLatest returns the member's newest unused reset.
	GetLatest(ctx context.Context, memberID string) (*domain.PasswordReset, error)
	IncrementAttempts(ctx context.Context, id string) error
	MarkUsed(ctx context.Context, id string) error
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	const query = `
        INSERT INTO password_resets (member_id, code_hash, channel, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, attempts, created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		reset.MemberID,
		reset.CodeHash,
		string(reset.Channel),
		reset.ExpiresAt,
	).Scan(&reset.ID, &reset.Attempts, &reset.CreatedAt)
}

func (r *passwordResetRepository) GetLatest(ctx context.Context, memberID string) (*domain.PasswordReset, error) {
	const query = `
        SELECT id, member_id, code_hash, channel, attempts, expires_at, used_at, created_at
        FROM password_resets
        WHERE member_id=$1 AND used_at IS NULL
        ORDER BY created_at DESC
        LIMIT 1`
	var (
		reset   domain.PasswordReset
		channel string
	)
	if err := conn(ctx, r.pool).QueryRow(ctx, query, memberID).Scan(
		&reset.ID,
		&reset.MemberID,
		&reset.CodeHash,
		&channel,
		&reset.Attempts,
		&reset.ExpiresAt,
		&reset.UsedAt,
		&reset.CreatedAt,
	); err != nil {
		return nil, err
	}
	reset.Channel = domain.ResetChannel(channel)
	return &reset, nil
}

func (r *passwordResetRepository) IncrementAttempts(ctx context.Context, id string) error {
	const query = `UPDATE password_resets SET attempts=attempts+1 WHERE id=$1`
	_, err := conn(ctx, r.pool).Exec(ctx, query, id)
	return err
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE password_resets SET used_at=NOW()
        WHERE id=$1`
	_, err := conn(ctx, r.pool).Exec(ctx, query, id)
	return err
}
