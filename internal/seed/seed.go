// Package seed loads reference data (musterings, bases, units and members)
// from a YAML file into the repositories.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

// Reference is the document layout of a seed file.
type Reference struct {
	Musterings []MusteringSeed `yaml:"musterings"`
	Bases      []BaseSeed      `yaml:"bases"`
	Units      []UnitSeed      `yaml:"units"`
	Members    []MemberSeed    `yaml:"members"`
}

type MusteringSeed struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type BaseSeed struct {
	ID            int64  `yaml:"id"`
	Name          string `yaml:"name"`
	City          string `yaml:"city"`
	Province      string `yaml:"province"`
	ContactNumber string `yaml:"contact_number"`
}

type UnitSeed struct {
	ID            int64  `yaml:"id"`
	MusteringCode string `yaml:"mustering_code"`
	Name          string `yaml:"name"`
	BaseID        *int64 `yaml:"base_id"`
}

// MemberSeed is a personnel record. Seeded members carry no password; they
// claim the record through registration.
type MemberSeed struct {
	ForceNumber        string `yaml:"force_number"`
	Rank               string `yaml:"rank"`
	FirstName          string `yaml:"first_name"`
	Surname            string `yaml:"surname"`
	Email              string `yaml:"email"`
	Phone              string `yaml:"phone"`
	MusteringCode      string `yaml:"mustering_code"`
	UnitID             *int64 `yaml:"unit_id"`
	PostDescription    string `yaml:"post_description"`
	ServiceType        string `yaml:"service_type"`
	Deployable         bool   `yaml:"deployable"`
	CurrentWhereabouts string `yaml:"current_whereabouts"`
	Tier               int    `yaml:"tier"`
	Readiness          string `yaml:"readiness"`
	ReadinessReason    string `yaml:"readiness_reason"`
}

// Result counts what Apply wrote.
type Result struct {
	Musterings     int
	Bases          int
	Units          int
	MembersCreated int
	MembersSkipped int
}

// Dependencies are the repositories Apply writes to.
type Dependencies struct {
	Users      repository.UserRepository
	Personnel  repository.PersonnelRepository
	Transactor repository.Transactor
	Logger     *zap.Logger
}

// ParseReference decodes and validates a seed document.
func ParseReference(data []byte) (*Reference, error) {
	var ref Reference
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := ref.validate(); err != nil {
		return nil, err
	}
	return &ref, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (*Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseReference(data)
}

func (r *Reference) validate() error {
	musterings := map[string]bool{}
	for _, m := range r.Musterings {
		if m.Code == "" || m.Name == "" {
			return apperrors.NewValidationError("mustering code and name are required", nil)
		}
		musterings[m.Code] = true
	}
	bases := map[int64]bool{}
	for _, b := range r.Bases {
		if b.ID <= 0 {
			return apperrors.NewValidationError("base id must be positive", map[string]any{"base": b.Name})
		}
		bases[b.ID] = true
	}
	units := map[int64]bool{}
	for _, u := range r.Units {
		if !musterings[u.MusteringCode] {
			return apperrors.NewValidationError("unit references unknown mustering", map[string]any{"unit": u.Name, "mustering_code": u.MusteringCode})
		}
		if u.BaseID != nil && !bases[*u.BaseID] {
			return apperrors.NewValidationError("unit references unknown base", map[string]any{"unit": u.Name})
		}
		units[u.ID] = true
	}
	seen := map[string]bool{}
	for _, m := range r.Members {
		number := strings.ToUpper(m.ForceNumber)
		if !domain.ValidForceNumber(number) {
			return apperrors.NewValidationError("invalid force number", map[string]any{"force_number": m.ForceNumber})
		}
		if seen[number] {
			return apperrors.NewValidationError("duplicate force number", map[string]any{"force_number": m.ForceNumber})
		}
		seen[number] = true
		if !domain.Tier(m.Tier).Valid() {
			return apperrors.NewValidationError("tier must be between 0 and 4", map[string]any{"force_number": m.ForceNumber})
		}
		if m.UnitID != nil && !units[*m.UnitID] {
			return apperrors.NewValidationError("member references unknown unit", map[string]any{"force_number": m.ForceNumber})
		}
		switch domain.ReadinessStatus(m.Readiness) {
		case "", domain.ReadinessReady, domain.ReadinessNotReady, domain.ReadinessPending:
		default:
			return apperrors.NewValidationError("unknown readiness status", map[string]any{"force_number": m.ForceNumber, "readiness": m.Readiness})
		}
	}
	return nil
}

// Apply upserts reference data and creates members that do not exist yet.
// Existing members are left untouched so seeding can be repeated.
func Apply(ctx context.Context, deps Dependencies, ref *Reference) (*Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &Result{}
	err := deps.Transactor.WithinTx(ctx, func(ctx context.Context) error {
		for _, m := range ref.Musterings {
			if err := deps.Personnel.UpsertMustering(ctx, domain.Mustering{Code: m.Code, Name: m.Name, Description: m.Description}); err != nil {
				return fmt.Errorf("upsert mustering %s: %w", m.Code, err)
			}
			result.Musterings++
		}
		for _, b := range ref.Bases {
			base := domain.Base{ID: b.ID, Name: b.Name, City: b.City, Province: b.Province, ContactNumber: b.ContactNumber}
			if err := deps.Personnel.UpsertBase(ctx, base); err != nil {
				return fmt.Errorf("upsert base %d: %w", b.ID, err)
			}
			result.Bases++
		}
		for _, u := range ref.Units {
			unit := domain.Unit{ID: u.ID, MusteringCode: u.MusteringCode, Name: u.Name, BaseID: u.BaseID}
			if err := deps.Personnel.UpsertUnit(ctx, unit); err != nil {
				return fmt.Errorf("upsert unit %d: %w", u.ID, err)
			}
			result.Units++
		}
		for _, m := range ref.Members {
			created, err := applyMember(ctx, deps, m)
			if err != nil {
				return err
			}
			if created {
				result.MembersCreated++
			} else {
				result.MembersSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("seed applied",
		zap.Int("musterings", result.Musterings),
		zap.Int("bases", result.Bases),
		zap.Int("units", result.Units),
		zap.Int("members_created", result.MembersCreated),
		zap.Int("members_skipped", result.MembersSkipped),
	)
	return result, nil
}

func applyMember(ctx context.Context, deps Dependencies, m MemberSeed) (bool, error) {
	number := strings.ToUpper(m.ForceNumber)
	existing, err := deps.Users.GetByForceNumber(ctx, number)
	if err == nil {
		return false, upsertReadiness(ctx, deps, existing.ID, m)
	}
	if !apperrors.IsNotFound(err) {
		return false, fmt.Errorf("lookup member %s: %w", number, err)
	}

	user := &domain.User{
		ForceNumber:        number,
		Rank:               m.Rank,
		FirstName:          m.FirstName,
		Surname:            m.Surname,
		Email:              m.Email,
		Phone:              m.Phone,
		MusteringCode:      m.MusteringCode,
		UnitID:             m.UnitID,
		PostDescription:    m.PostDescription,
		ServiceType:        m.ServiceType,
		Deployable:         m.Deployable,
		CurrentWhereabouts: m.CurrentWhereabouts,
		Tier:               domain.Tier(m.Tier),
	}
	if err := deps.Users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create member %s: %w", number, err)
	}
	return true, upsertReadiness(ctx, deps, user.ID, m)
}

func upsertReadiness(ctx context.Context, deps Dependencies, memberID string, m MemberSeed) error {
	if m.Readiness == "" {
		return nil
	}
	err := deps.Personnel.UpsertReadiness(ctx, domain.Readiness{
		MemberID:     memberID,
		Status:       domain.ReadinessStatus(m.Readiness),
		Reason:       m.ReadinessReason,
		LastAssessed: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("upsert readiness %s: %w", m.ForceNumber, err)
	}
	return nil
}
