package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
)

type UserStore struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserStore)(nil)

var userFields = map[string]string{
	"id":    "id",
	"email": "email",
	"name":  "name",
}

func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password, avatar, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.Password, user.Avatar, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUser()
		}
		return fmt.Errorf("postgres: inserting user %s: %w", user.Email, err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.getBy(ctx, "id", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	return u, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.getBy(ctx, "email", email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundMessage("no user with that email")
	}
	return u, err
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, password, avatar, created_at
		 FROM users WHERE `+column+` = $1`,
		value,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("postgres: getting user by %s: %w", column, err)
	}
	return &u, nil
}

func (s *UserStore) DeleteOne(ctx context.Context, field, value string) (bool, error) {
	column, ok := userFields[field]
	if !ok {
		return false, nil
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM users WHERE id = (
			SELECT id FROM users WHERE `+column+` = $1 ORDER BY created_at LIMIT 1
		)`,
		value,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: deleting user by %s: %w", field, err)
	}
	return tag.RowsAffected() > 0, nil
}
