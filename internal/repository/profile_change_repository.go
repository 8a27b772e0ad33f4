package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// ProfileChangeFilter narrows pending request listings.
type ProfileChangeFilter struct {
	Statuses []domain.ChangeStatus
	Limit    int
	Offset   int
}

// ProfileChangeRepository persists the single pending slot of each member.
type ProfileChangeRepository interface {
	// Get returns nil without error when the member has no pending request.
	Get(ctx context.Context, memberID string) (*domain.ProfileChangeRequest, error)
	Save(ctx context.Context, req *domain.ProfileChangeRequest) error
	Delete(ctx context.Context, memberID string) error
	List(ctx context.Context, filter ProfileChangeFilter) ([]domain.ProfileChangeRequest, error)
}

type profileChangeRepository struct {
	pool *pgxpool.Pool
}

// NewProfileChangeRepository builds the repository.
func NewProfileChangeRepository(pool *pgxpool.Pool) ProfileChangeRepository {
	return &profileChangeRepository{pool: pool}
}

const profileChangeColumns = `member_id, updates, submitted_by, submitted_at, status, recommended_by, recommended_at, justification`

func (r *profileChangeRepository) Get(ctx context.Context, memberID string) (*domain.ProfileChangeRequest, error) {
	query := `SELECT ` + profileChangeColumns + ` FROM profile_change_requests WHERE member_id=$1`
	req, err := scanProfileChange(conn(ctx, r.pool).QueryRow(ctx, query, memberID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *profileChangeRepository) Save(ctx context.Context, req *domain.ProfileChangeRequest) error {
	const query = `
        INSERT INTO profile_change_requests (member_id, updates, submitted_by, submitted_at, status,
            recommended_by, recommended_at, justification)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (member_id) DO UPDATE SET
            updates=EXCLUDED.updates,
            submitted_by=EXCLUDED.submitted_by,
            submitted_at=EXCLUDED.submitted_at,
            status=EXCLUDED.status,
            recommended_by=EXCLUDED.recommended_by,
            recommended_at=EXCLUDED.recommended_at,
            justification=EXCLUDED.justification`

	_, err := conn(ctx, r.pool).Exec(ctx, query,
		req.MemberID,
		map[string]string(req.Updates),
		req.SubmittedBy,
		req.SubmittedAt,
		req.Status,
		req.RecommendedBy,
		req.RecommendedAt,
		req.Justification,
	)
	return err
}

func (r *profileChangeRepository) Delete(ctx context.Context, memberID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM profile_change_requests WHERE member_id=$1`, memberID)
	return err
}

func (r *profileChangeRepository) List(ctx context.Context, filter ProfileChangeFilter) ([]domain.ProfileChangeRequest, error) {
	query := `SELECT ` + profileChangeColumns + ` FROM profile_change_requests`
	args := []any{}
	clauses := []string{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY submitted_at ASC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ProfileChangeRequest{}
	for rows.Next() {
		req, err := scanProfileChange(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}

func scanProfileChange(row pgx.Row) (*domain.ProfileChangeRequest, error) {
	var (
		req     domain.ProfileChangeRequest
		updates map[string]string
	)
	if err := row.Scan(
		&req.MemberID,
		&updates,
		&req.SubmittedBy,
		&req.SubmittedAt,
		&req.Status,
		&req.RecommendedBy,
		&req.RecommendedAt,
		&req.Justification,
	); err != nil {
		return nil, err
	}
	req.Updates = domain.ProfileUpdates(updates)
	return &req, nil
}
