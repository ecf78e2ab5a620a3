package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// UserRepository reads actors and applies the ledger fields the engine owns.
type UserRepository interface {
	Create(ctx context.Context, actor *domain.Actor) error
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
	// AddPoints increments the civic point balance in a single statement.
	AddPoints(ctx context.Context, id string, delta int) error
	// RecordRating folds rating into the running average and returns the updated actor.
	RecordRating(ctx context.Context, id string, rating int) (*domain.Actor, error)
	// ListByRole returns active actors holding role, ordered by department then name.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Actor, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, phone, role, department, city, civic_points,
               average_rating, total_ratings, active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, actor *domain.Actor) error {
	const query = `
        INSERT INTO users (name, email, phone, role, department, city, active)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
        RETURNING id, civic_points, average_rating, total_ratings, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		actor.Name,
		actor.Email,
		actor.Phone,
		actor.Role,
		actor.Department,
		actor.City,
		actor.Active,
	).Scan(&actor.ID, &actor.CivicPoints, &actor.AverageRating, &actor.TotalRatings, &actor.CreatedAt, &actor.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	actor, err := scanActor(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return actor, err
}

func (r *userRepository) AddPoints(ctx context.Context, id string, delta int) error {
	const query = `UPDATE users SET civic_points = civic_points + $1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, delta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) RecordRating(ctx context.Context, id string, rating int) (*domain.Actor, error) {
	query := `
        UPDATE users
        SET average_rating = (average_rating * total_ratings + $1) / (total_ratings + 1),
            total_ratings = total_ratings + 1,
            updated_at = NOW()
        WHERE id=$2
        RETURNING ` + userColumns
	actor, err := scanActor(r.pool.QueryRow(ctx, query, rating, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return actor, err
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Actor, error) {
	query := `SELECT ` + userColumns + `
        FROM users WHERE role=$1 AND active=true
        ORDER BY department NULLS LAST, name, id`
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *actor)
	}
	return result, rows.Err()
}

func scanActor(row pgx.Row) (*domain.Actor, error) {
	var (
		actor      domain.Actor
		department *string
	)
	if err := row.Scan(
		&actor.ID,
		&actor.Name,
		&actor.Email,
		&actor.Phone,
		&actor.Role,
		&department,
		&actor.City,
		&actor.CivicPoints,
		&actor.AverageRating,
		&actor.TotalRatings,
		&actor.Active,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if department != nil {
		actor.Department = domain.Department(*department)
	}
	return &actor, nil
}
