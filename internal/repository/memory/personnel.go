package memory

import (
	"context"
	"sort"

	"github.com/staffsync/staffsync-api/internal/domain"
)

type personnelRepository struct {
	s *Store
}

func (r *personnelRepository) ListPersonnel(_ context.Context) ([]domain.PersonnelRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]domain.PersonnelRow, 0, len(r.s.users))
	for _, u := range r.s.users {
		row := domain.PersonnelRow{
			MemberID:        u.ID,
			ForceNumber:     u.ForceNumber,
			Rank:            u.Rank,
			FirstName:       u.FirstName,
			Surname:         u.Surname,
			Email:           u.Email,
			MusteringCode:   u.MusteringCode,
			UnitID:          u.UnitID,
			ReadinessStatus: domain.ReadinessReady,
		}
		if m, ok := r.s.musterings[u.MusteringCode]; ok {
			row.MusteringName = m.Name
		}
		if u.UnitID != nil {
			if unit, ok := r.s.units[*u.UnitID]; ok {
				row.UnitName = unit.Name
				row.BaseID = unit.BaseID
				if unit.BaseID != nil {
					if base, ok := r.s.bases[*unit.BaseID]; ok {
						row.BaseName = base.Name
					}
				}
			}
		}
		if rd, ok := r.s.readiness[u.ID]; ok {
			row.ReadinessStatus = rd.Status
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ForceNumber < b.ForceNumber
	})
	return rows, nil
}

func (r *personnelRepository) ListMusterings(_ context.Context) ([]domain.Mustering, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Mustering, 0, len(r.s.musterings))
	for _, m := range r.s.musterings {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *personnelRepository) ListBases(_ context.Context) ([]domain.Base, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Base, 0, len(r.s.bases))
	for _, b := range r.s.bases {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *personnelRepository) ListUnits(_ context.Context) ([]domain.Unit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Unit, 0, len(r.s.units))
	for _, u := range r.s.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *personnelRepository) UpsertMustering(_ context.Context, m domain.Mustering) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.musterings[m.Code] = m
	return nil
}

func (r *personnelRepository) UpsertBase(_ context.Context, b domain.Base) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bases[b.ID] = b
	return nil
}

func (r *personnelRepository) UpsertUnit(_ context.Context, u domain.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.units[u.ID] = u
	return nil
}

func (r *personnelRepository) UpsertReadiness(_ context.Context, rd domain.Readiness) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.readiness[rd.MemberID] = rd
	return nil
}
