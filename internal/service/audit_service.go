package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

// AuditService writes and reads the audit trail.
type AuditService struct {
	logs   repository.AuditLogRepository
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(logs repository.AuditLogRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{logs: logs, logger: logger}
}

// Record persists one entry. Called inside a transaction it joins it.
func (s *AuditService) Record(ctx context.Context, entry *domain.AuditLog) error {
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("record audit %s %s: %w", entry.Action, entry.Entity, err)
	}
	return nil
}

// RecordBestEffort persists an entry and only logs failures.
func (s *AuditService) RecordBestEffort(ctx context.Context, entry *domain.AuditLog) {
	if err := s.Record(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.Error(err), zap.String("action", string(entry.Action)), zap.String("entity", entry.Entity))
	}
}

// List returns audit entries, newest first. Only finalizer tiers may read them.
func (s *AuditService) List(ctx context.Context, actor *domain.User, filter repository.AuditLogFilter) ([]domain.AuditLog, error) {
	if actor == nil || !actor.Tier.Allows(domain.ActionViewAudit) {
		return nil, apperrors.NewForbidden("audit log requires tier 3 or above")
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.logs.List(ctx, filter)
}
