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

type ProfileStore struct {
	pool *pgxpool.Pool
}

var _ repository.ProfileRepository = (*ProfileStore)(nil)

const selectProfile = `
	SELECT p.id, p.user_id, p.company, p.website, p.location, p.bio, p.status,
	       p.githubusername, p.skills, p.social, p.experience, p.education,
	       p.created_at, p.updated_at,
	       COALESCE(u.name, ''), COALESCE(u.avatar, '')
	FROM profiles p
	LEFT JOIN users u ON u.id = p.user_id`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Bio, &p.Status,
		&p.GitHubUsername, &p.Skills, &p.Social, &p.Experience, &p.Education,
		&p.CreatedAt, &p.UpdatedAt,
		&p.User.Name, &p.User.Avatar,
	)
	if err != nil {
		return nil, err
	}
	p.User.ID = p.UserID
	normalizeProfile(&p)
	return &p, nil
}

func normalizeProfile(p *model.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []model.Experience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
}

func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := scanProfile(s.pool.QueryRow(ctx, selectProfile+` WHERE p.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("profile for user", userID)
		}
		return nil, fmt.Errorf("postgres: getting profile for user %s: %w", userID, err)
	}
	return p, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx, selectProfile+` ORDER BY p.created_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileStore) Create(ctx context.Context, profile *model.Profile) error {
	profile.ID = xid.New().String()
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	normalizeProfile(profile)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, user_id, company, website, location, bio, status,
		                       githubusername, skills, social, experience, education,
		                       created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		profile.ID, profile.UserID, profile.Company, profile.Website, profile.Location,
		profile.Bio, profile.Status, profile.GitHubUsername,
		profile.Skills, profile.Social, profile.Experience, profile.Education,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("profile for user", profile.UserID)
		}
		return fmt.Errorf("postgres: inserting profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *ProfileStore) Update(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()
	normalizeProfile(profile)

	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles
		 SET company = $1, website = $2, location = $3, bio = $4, status = $5,
		     githubusername = $6, skills = $7, social = $8, experience = $9,
		     education = $10, updated_at = $11
		 WHERE id = $12`,
		profile.Company, profile.Website, profile.Location, profile.Bio, profile.Status,
		profile.GitHubUsername, profile.Skills, profile.Social, profile.Experience,
		profile.Education, profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating profile %s: %w", profile.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("profile", profile.ID)
	}
	return nil
}

func (s *ProfileStore) DeleteByUserID(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("postgres: deleting profile for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("profile for user", userID)
	}
	return nil
}
