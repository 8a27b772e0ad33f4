package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
)

type auditLogRepository struct {
	s *Store
}

func (r *auditLogRepository) Create(_ context.Context, entry *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.Timestamp = r.s.now()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

// List returns newest entries first.
func (r *auditLogRepository) List(_ context.Context, filter repository.AuditLogFilter) ([]domain.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.AuditLog{}
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		entry := r.s.audit[i]
		if filter.ActorID != nil && (entry.ActorID == nil || *entry.ActorID != *filter.ActorID) {
			continue
		}
		if filter.TargetUserID != nil && (entry.TargetUserID == nil || *entry.TargetUserID != *filter.TargetUserID) {
			continue
		}
		if filter.Action != nil && entry.Action != *filter.Action {
			continue
		}
		result = append(result, entry)
	}
	return paginate(result, filter.Limit, filter.Offset, 100), nil
}
