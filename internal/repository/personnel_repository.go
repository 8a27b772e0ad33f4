package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// PersonnelRepository reads the joined personnel directory and manages the
// reference tables behind it.
type PersonnelRepository interface {
	ListPersonnel(ctx context.Context) ([]domain.PersonnelRow, error)
	ListMusterings(ctx context.Context) ([]domain.Mustering, error)
	ListBases(ctx context.Context) ([]domain.Base, error)
	ListUnits(ctx context.Context) ([]domain.Unit, error)
	UpsertMustering(ctx context.Context, m domain.Mustering) error
	UpsertBase(ctx context.Context, b domain.Base) error
	UpsertUnit(ctx context.Context, u domain.Unit) error
	UpsertReadiness(ctx context.Context, r domain.Readiness) error
}

type personnelRepository struct {
	pool *pgxpool.Pool
}

// NewPersonnelRepository builds the repository.
func NewPersonnelRepository(pool *pgxpool.Pool) PersonnelRepository {
	return &personnelRepository{pool: pool}
}

func (r *personnelRepository) ListPersonnel(ctx context.Context) ([]domain.PersonnelRow, error) {
	const query = `
        SELECT u.id, u.force_number, u.rank, u.first_name, u.surname, u.email, u.mustering_code,
            COALESCE(m.name, ''), u.unit_id, COALESCE(un.name, ''), un.base_id, COALESCE(b.name, ''),
            COALESCE(rd.overall_status, 'Ready')
        FROM users u
        LEFT JOIN musterings m ON m.code = u.mustering_code
        LEFT JOIN units un ON un.id = u.unit_id
        LEFT JOIN bases b ON b.id = un.base_id
        LEFT JOIN readiness rd ON rd.member_id = u.id
        ORDER BY u.surname, u.first_name, u.force_number`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.PersonnelRow{}
	for rows.Next() {
		var row domain.PersonnelRow
		if err := rows.Scan(
			&row.MemberID,
			&row.ForceNumber,
			&row.Rank,
			&row.FirstName,
			&row.Surname,
			&row.Email,
			&row.MusteringCode,
			&row.MusteringName,
			&row.UnitID,
			&row.UnitName,
			&row.BaseID,
			&row.BaseName,
			&row.ReadinessStatus,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *personnelRepository) ListMusterings(ctx context.Context) ([]domain.Mustering, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT code, name, description FROM musterings ORDER BY code`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Mustering, error) {
		var m domain.Mustering
		err := row.Scan(&m.Code, &m.Name, &m.Description)
		return m, err
	})
}

func (r *personnelRepository) ListBases(ctx context.Context) ([]domain.Base, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, name, city, province, contact_number FROM bases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Base, error) {
		var b domain.Base
		err := row.Scan(&b.ID, &b.Name, &b.City, &b.Province, &b.ContactNumber)
		return b, err
	})
}

func (r *personnelRepository) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id, mustering_code, name, base_id FROM units ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Unit, error) {
		var u domain.Unit
		err := row.Scan(&u.ID, &u.MusteringCode, &u.Name, &u.BaseID)
		return u, err
	})
}

func (r *personnelRepository) UpsertMustering(ctx context.Context, m domain.Mustering) error {
	const query = `
        INSERT INTO musterings (code, name, description) VALUES ($1,$2,$3)
        ON CONFLICT (code) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description`
	_, err := conn(ctx, r.pool).Exec(ctx, query, m.Code, m.Name, m.Description)
	return err
}

func (r *personnelRepository) UpsertBase(ctx context.Context, b domain.Base) error {
	const query = `
        INSERT INTO bases (id, name, city, province, contact_number) VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, city=EXCLUDED.city,
            province=EXCLUDED.province, contact_number=EXCLUDED.contact_number`
	_, err := conn(ctx, r.pool).Exec(ctx, query, b.ID, b.Name, b.City, b.Province, b.ContactNumber)
	return err
}

func (r *personnelRepository) UpsertUnit(ctx context.Context, u domain.Unit) error {
	const query = `
        INSERT INTO units (id, mustering_code, name, base_id) VALUES ($1,$2,$3,$4)
        ON CONFLICT (id) DO UPDATE SET mustering_code=EXCLUDED.mustering_code, name=EXCLUDED.name,
            base_id=EXCLUDED.base_id`
	_, err := conn(ctx, r.pool).Exec(ctx, query, u.ID, u.MusteringCode, u.Name, u.BaseID)
	return err
}

func (r *personnelRepository) UpsertReadiness(ctx context.Context, rd domain.Readiness) error {
	const query = `
        INSERT INTO readiness (member_id, overall_status, status_reason, last_assessed, assessed_by)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (member_id) DO UPDATE SET overall_status=EXCLUDED.overall_status,
            status_reason=EXCLUDED.status_reason, last_assessed=EXCLUDED.last_assessed,
            assessed_by=EXCLUDED.assessed_by`
	_, err := conn(ctx, r.pool).Exec(ctx, query, rd.MemberID, rd.Status, rd.Reason, rd.LastAssessed, rd.AssessedBy)
	return err
}
