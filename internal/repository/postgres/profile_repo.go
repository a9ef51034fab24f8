package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/repository"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, display_name, status, last_seen
		FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.DisplayName, &p.Status, &p.LastSeen)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, user_id, display_name, status, last_seen)
		VALUES ($1, $2, $3, $4, $5)`,
		profile.ID, profile.UserID, profile.DisplayName, profile.Status, profile.LastSeen,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *ProfileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE profiles SET display_name = $1, status = $2, last_seen = $3
		WHERE id = $4`,
		profile.DisplayName, profile.Status, profile.LastSeen, profile.ID,
	)
	return err
}
