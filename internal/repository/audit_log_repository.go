package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// AuditLogFilter narrows audit log listings.
type AuditLogFilter struct {
	ActorID      *string
	TargetUserID *string
	Action       *domain.AuditAction
	Limit        int
	Offset       int
}

// AuditLogRepository stores audit entries.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (actor_id, target_user_id, action, entity, field, old_value, new_value, justification, ip_address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, ts`
	oldValue, err := jsonValue(entry.OldValue)
	if err != nil {
		return fmt.Errorf("encode old value: %w", err)
	}
	newValue, err := jsonValue(entry.NewValue)
	if err != nil {
		return fmt.Errorf("encode new value: %w", err)
	}
	return conn(ctx, r.pool).QueryRow(ctx, query,
		entry.ActorID,
		entry.TargetUserID,
		entry.Action,
		entry.Entity,
		entry.Field,
		oldValue,
		newValue,
		entry.Justification,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.Timestamp)
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error) {
	query := `
        SELECT id, ts, actor_id, target_user_id, action, entity, field, old_value, new_value, justification, ip_address
        FROM audit_logs`
	args := []any{}
	clauses := []string{}

	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id=$%d", len(args)))
	}
	if filter.TargetUserID != nil {
		args = append(args, *filter.TargetUserID)
		clauses = append(clauses, fmt.Sprintf("target_user_id=$%d", len(args)))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		clauses = append(clauses, fmt.Sprintf("action=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY ts DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
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

	result := []domain.AuditLog{}
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.ActorID,
			&entry.TargetUserID,
			&entry.Action,
			&entry.Entity,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Justification,
			&entry.IPAddress,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// jsonValue encodes v for a JSONB column. pgx sends strings to json columns
// verbatim, so scalars are marshalled up front.
func jsonValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
