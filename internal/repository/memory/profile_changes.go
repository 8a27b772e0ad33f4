package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
)

type profileChangeRepository struct {
	s *Store
}

func (r *profileChangeRepository) Get(_ context.Context, memberID string) (*domain.ProfileChangeRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.changes[memberID]
	if !ok {
		return nil, nil
	}
	clone := req.Clone()
	return &clone, nil
}

func (r *profileChangeRepository) Save(_ context.Context, req *domain.ProfileChangeRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.changes[req.MemberID] = req.Clone()
	return nil
}

func (r *profileChangeRepository) Delete(_ context.Context, memberID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.changes, memberID)
	return nil
}

func (r *profileChangeRepository) List(_ context.Context, filter repository.ProfileChangeFilter) ([]domain.ProfileChangeRequest, error) {
	r.s.mu.RLock()
	result := []domain.ProfileChangeRequest{}
	for _, req := range r.s.changes {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, req.Status) {
			continue
		}
		result = append(result, req.Clone())
	}
	r.s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].MemberID < result[j].MemberID
		}
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	return paginate(result, filter.Limit, filter.Offset, 50), nil
}

func paginate[T any](items []T, limit, offset, defaultLimit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
