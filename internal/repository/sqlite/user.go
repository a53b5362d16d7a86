package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
)

// UserStore is the users collection.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

// userFields maps the fields a user document can be matched on to columns.
var userFields = map[string]string{
	"id":    "id",
	"email": "email",
	"name":  "name",
}

func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password, avatar, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.Avatar,
		toUnix(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUser()
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.getBy(ctx, "id", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	return u, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.getBy(ctx, "email", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundMessage("no user with that email")
	}
	return u, err
}

// getBy reads one user by a trusted column name. sql.ErrNoRows is returned
// unwrapped so callers can phrase their own not-found error.
func (s *UserStore) getBy(ctx context.Context, column, value string) (*model.User, error) {
	var (
		u       model.User
		created int64
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password, avatar, created_at
		 FROM users WHERE `+column+` = ?`,
		value,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("sqlite: getting user by %s: %w", column, err)
	}

	u.CreatedAt = fromUnix(created)
	return &u, nil
}

func (s *UserStore) DeleteOne(ctx context.Context, field, value string) (bool, error) {
	column, ok := userFields[field]
	if !ok {
		return false, nil
	}

	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM users WHERE id IN (
			SELECT id FROM users WHERE `+column+` = ? ORDER BY created_at LIMIT 1
		)`,
		value,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user by %s: %w", field, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}
