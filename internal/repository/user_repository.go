package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffsync/staffsync-api/internal/domain"
)

// UserRepository defines persistence access for member records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)
	GetByForceNumber(ctx context.Context, forceNumber string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, force_number, rank, first_name, surname, email, phone, mustering_code, unit_id,
        post_description, service_type, deployable, current_whereabouts, tier, password_hash, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (force_number, rank, first_name, surname, email, phone, mustering_code, unit_id,
            post_description, service_type, deployable, current_whereabouts, tier, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`

	return conn(ctx, r.pool).QueryRow(ctx, query,
		user.ForceNumber,
		user.Rank,
		user.FirstName,
		user.Surname,
		user.Email,
		user.Phone,
		user.MusteringCode,
		user.UnitID,
		user.PostDescription,
		user.ServiceType,
		user.Deployable,
		user.CurrentWhereabouts,
		user.Tier,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET force_number=$1, rank=$2, first_name=$3, surname=$4, email=$5, phone=$6,
            mustering_code=$7, unit_id=$8, post_description=$9, service_type=$10, deployable=$11,
            current_whereabouts=$12, tier=$13, password_hash=$14, updated_at=NOW()
        WHERE id=$15
        RETURNING updated_at`

	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.ForceNumber,
		user.Rank,
		user.FirstName,
		user.Surname,
		user.Email,
		user.Phone,
		user.MusteringCode,
		user.UnitID,
		user.PostDescription,
		user.ServiceType,
		user.Deployable,
		user.CurrentWhereabouts,
		user.Tier,
		user.PasswordHash,
		user.ID,
	).Scan(&user.UpdatedAt)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id)
}

func (r *userRepository) GetByForceNumber(ctx context.Context, forceNumber string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE force_number=$1`, forceNumber)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1) LIMIT 1`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.ForceNumber,
		&user.Rank,
		&user.FirstName,
		&user.Surname,
		&user.Email,
		&user.Phone,
		&user.MusteringCode,
		&user.UnitID,
		&user.PostDescription,
		&user.ServiceType,
		&user.Deployable,
		&user.CurrentWhereabouts,
		&user.Tier,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
