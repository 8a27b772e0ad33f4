package service

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

// DefaultPageSize is the dashboard's personnel page size.
const DefaultPageSize = 8

// csvHeader lists the export columns in order.
var csvHeader = []string{"force_number", "rank", "surname", "first_name", "mustering", "unit", "base", "readiness"}

// PersonnelService serves the personnel directory.
type PersonnelService struct {
	personnel repository.PersonnelRepository
	pageSize  int
}

// NewPersonnelService constructs the service.
func NewPersonnelService(personnel repository.PersonnelRepository, pageSize int) *PersonnelService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PersonnelService{personnel: personnel, pageSize: pageSize}
}

// PersonnelFilter narrows the directory. Empty slices match everything.
type PersonnelFilter struct {
	Search     string
	Musterings []string
	Ranks      []string
	Readiness  []domain.ReadinessStatus
	Page       int
	PageSize   int
}

// PersonnelPage is one page of filtered rows.
type PersonnelPage struct {
	Rows       []domain.PersonnelRow
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// RankCount is a rank with its member count.
type RankCount struct {
	Rank  string `json:"rank"`
	Count int    `json:"count"`
}

// MusteringCount is a mustering with its member count.
type MusteringCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MusteringBreakdown backs the musterings panel.
type MusteringBreakdown struct {
	Musterings []MusteringCount `json:"musterings"`
	Selected   string           `json:"selected"`
	Ranks      []RankCount      `json:"ranks"`
}

// BaseCount is a base with location fields and its member count.
type BaseCount struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	City          string `json:"city"`
	Province      string `json:"province"`
	ContactNumber string `json:"contact_number"`
	Members       int    `json:"members"`
	Units         int    `json:"units"`
}

// UnitCount is a unit with its base and member count.
type UnitCount struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	MusteringCode string `json:"mustering_code"`
	BaseID        *int64 `json:"base_id,omitempty"`
	BaseName      string `json:"base_name"`
	Members       int    `json:"members"`
}

// Rows returns every row with placeholders filled for missing lookups.
func (s *PersonnelService) Rows(ctx context.Context) ([]domain.PersonnelRow, error) {
	rows, err := s.personnel.ListPersonnel(ctx)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	for i := range rows {
		fillPlaceholders(&rows[i])
	}
	return rows, nil
}

// List filters and paginates the directory. Pages past the end clamp to the
// last page.
func (s *PersonnelService) List(ctx context.Context, filter PersonnelFilter) (*PersonnelPage, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterPersonnel(rows, filter)

	size := filter.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	totalPages := (len(filtered) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * size
	end := min(start+size, len(filtered))

	return &PersonnelPage{
		Rows:       filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

// FilterPersonnel applies search and facet filters. Search is a
// case-insensitive substring match over the row's visible fields joined by
// spaces.
func FilterPersonnel(rows []domain.PersonnelRow, filter PersonnelFilter) []domain.PersonnelRow {
	query := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.PersonnelRow, 0, len(rows))
	for _, row := range rows {
		if query != "" && !strings.Contains(searchText(row), query) {
			continue
		}
		if len(filter.Musterings) > 0 && !slices.Contains(filter.Musterings, row.MusteringCode) {
			continue
		}
		if len(filter.Ranks) > 0 && !slices.Contains(filter.Ranks, row.Rank) {
			continue
		}
		if len(filter.Readiness) > 0 && !slices.Contains(filter.Readiness, row.ReadinessStatus) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func searchText(row domain.PersonnelRow) string {
	return strings.ToLower(strings.Join([]string{
		row.ForceNumber, row.Rank, row.Surname, row.FirstName,
		row.MusteringName, row.UnitName, row.BaseName,
	}, " "))
}

func fillPlaceholders(row *domain.PersonnelRow) {
	if row.MusteringName == "" {
		row.MusteringName = domain.Placeholder
	}
	if row.UnitName == "" {
		row.UnitName = domain.Placeholder
	}
	if row.BaseName == "" {
		row.BaseName = domain.Placeholder
	}
	if row.ReadinessStatus == "" {
		row.ReadinessStatus = domain.ReadinessReady
	}
}

// MusteringBreakdown counts members per mustering and, for the selected code,
// per rank. An empty code selects the first mustering.
func (s *PersonnelService) MusteringBreakdown(ctx context.Context, code string) (*MusteringBreakdown, error) {
	var (
		rows       []domain.PersonnelRow
		musterings []domain.Mustering
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.Rows(gctx)
		return err
	})
	g.Go(func() (err error) {
		musterings, err = s.personnel.ListMusterings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, row := range rows {
		if row.MusteringCode != "" {
			counts[row.MusteringCode]++
		}
	}

	result := &MusteringBreakdown{Musterings: make([]MusteringCount, 0, len(musterings)), Ranks: []RankCount{}}
	for _, m := range musterings {
		result.Musterings = append(result.Musterings, MusteringCount{Code: m.Code, Name: m.Name, Count: counts[m.Code]})
	}

	result.Selected = code
	if result.Selected == "" && len(musterings) > 0 {
		result.Selected = musterings[0].Code
	}
	if result.Selected == "" {
		return result, nil
	}
	if code != "" && !slices.ContainsFunc(musterings, func(m domain.Mustering) bool { return m.Code == code }) {
		return nil, apperrors.NewNotFound("mustering", map[string]any{"code": code})
	}

	byRank := map[string]int{}
	for _, row := range rows {
		if row.MusteringCode != result.Selected {
			continue
		}
		rank := row.Rank
		if rank == "" {
			rank = "Unknown"
		}
		byRank[rank]++
	}
	for rank, count := range byRank {
		result.Ranks = append(result.Ranks, RankCount{Rank: rank, Count: count})
	}
	sort.Slice(result.Ranks, func(i, j int) bool {
		if result.Ranks[i].Count != result.Ranks[j].Count {
			return result.Ranks[i].Count > result.Ranks[j].Count
		}
		return result.Ranks[i].Rank < result.Ranks[j].Rank
	})
	return result, nil
}

// BaseBreakdown counts members and units per base.
func (s *PersonnelService) BaseBreakdown(ctx context.Context) ([]BaseCount, error) {
	var (
		rows  []domain.PersonnelRow
		bases []domain.Base
		units []domain.Unit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.personnel.ListPersonnel(gctx)
		return err
	})
	g.Go(func() (err error) {
		bases, err = s.personnel.ListBases(gctx)
		return err
	})
	g.Go(func() (err error) {
		units, err = s.personnel.ListUnits(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load base breakdown: %w", err)
	}

	members := map[int64]int{}
	for _, row := range rows {
		if row.BaseID != nil {
			members[*row.BaseID]++
		}
	}
	unitCounts := map[int64]int{}
	for _, unit := range units {
		if unit.BaseID != nil {
			unitCounts[*unit.BaseID]++
		}
	}

	out := make([]BaseCount, 0, len(bases))
	for _, b := range bases {
		out = append(out, BaseCount{
			ID:            b.ID,
			Name:          b.Name,
			City:          b.City,
			Province:      b.Province,
			ContactNumber: b.ContactNumber,
			Members:       members[b.ID],
			Units:         unitCounts[b.ID],
		})
	}
	return out, nil
}

// UnitBreakdown counts members per unit.
func (s *PersonnelService) UnitBreakdown(ctx context.Context) ([]UnitCount, error) {
	var (
		rows  []domain.PersonnelRow
		bases []domain.Base
		units []domain.Unit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.personnel.ListPersonnel(gctx)
		return err
	})
	g.Go(func() (err error) {
		bases, err = s.personnel.ListBases(gctx)
		return err
	})
	g.Go(func() (err error) {
		units, err = s.personnel.ListUnits(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load unit breakdown: %w", err)
	}

	members := map[int64]int{}
	for _, row := range rows {
		if row.UnitID != nil {
			members[*row.UnitID]++
		}
	}
	baseNames := make(map[int64]string, len(bases))
	for _, b := range bases {
		baseNames[b.ID] = b.Name
	}

	out := make([]UnitCount, 0, len(units))
	for _, u := range units {
		count := UnitCount{
			ID:            u.ID,
			Name:          u.Name,
			MusteringCode: u.MusteringCode,
			BaseID:        u.BaseID,
			BaseName:      domain.Placeholder,
			Members:       members[u.ID],
		}
		if u.BaseID != nil {
			if name, ok := baseNames[*u.BaseID]; ok {
				count.BaseName = name
			}
		}
		out = append(out, count)
	}
	return out, nil
}

// ExportCSV writes every row matching filter (ignoring pagination) as CSV.
func (s *PersonnelService) ExportCSV(ctx context.Context, w io.Writer, filter PersonnelFilter) (int, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return 0, err
	}
	filtered := FilterPersonnel(rows, filter)
	if err := WritePersonnelCSV(w, filtered); err != nil {
		return 0, err
	}
	return len(filtered), nil
}

// WritePersonnelCSV renders rows with every value quoted and embedded quotes
// doubled. Lines are separated by "\n" with no trailing newline.
func WritePersonnelCSV(w io.Writer, rows []domain.PersonnelRow) error {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		values := []string{
			row.ForceNumber, row.Rank, row.Surname, row.FirstName,
			row.MusteringName, row.UnitName, row.BaseName, string(row.ReadinessStatus),
		}
		for i, v := range values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
