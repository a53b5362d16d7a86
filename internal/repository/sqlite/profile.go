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

// ProfileStore is the profiles collection.
type ProfileStore struct {
	conn *sql.DB
}

var _ repository.ProfileRepository = (*ProfileStore)(nil)

// selectProfile joins the owner's name and avatar. The join is outer: a
// profile whose user is gone still reads, with an empty owner.
const selectProfile = `
	SELECT p.id, p.user_id, p.company, p.website, p.location, p.bio, p.status,
	       p.githubusername, p.skills, p.social, p.experience, p.education,
	       p.created_at, p.updated_at,
	       COALESCE(u.name, ''), COALESCE(u.avatar, '')
	FROM profiles p
	LEFT JOIN users u ON u.id = p.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var p model.Profile
	var skills, social, experience, edu string
	var created, updated int64

	err := row.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Bio, &p.Status,
		&p.GitHubUsername, &skills, &social, &experience, &edu,
		&created, &updated,
		&p.User.Name, &p.User.Avatar,
	)
	if err != nil {
		return nil, err
	}

	if err := decode(skills, &p.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if err := decode(social, &p.Social); err != nil {
		return nil, fmt.Errorf("decoding social: %w", err)
	}
	if err := decode(experience, &p.Experience); err != nil {
		return nil, fmt.Errorf("decoding experience: %w", err)
	}
	if err := decode(edu, &p.Education); err != nil {
		return nil, fmt.Errorf("decoding education: %w", err)
	}

	p.User.ID = p.UserID
	p.CreatedAt = fromUnix(created)
	p.UpdatedAt = fromUnix(updated)
	normalizeProfile(&p)
	return &p, nil
}

// normalizeProfile replaces nil lists with empty ones so they serialize as [].
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
	p, err := scanProfile(s.conn.QueryRowContext(ctx, selectProfile+` WHERE p.user_id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile for user", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}
	return p, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.conn.QueryContext(ctx, selectProfile+` ORDER BY p.created_at`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile row: %w", err)
		}
		profiles = append(profiles, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}

	return profiles, nil
}

// profileColumns encodes the document fields shared by insert and update.
func profileColumns(p *model.Profile) (skills, social, experience, education string, err error) {
	normalizeProfile(p)
	if skills, err = encode(p.Skills); err != nil {
		return
	}
	if social, err = encode(p.Social); err != nil {
		return
	}
	if experience, err = encode(p.Experience); err != nil {
		return
	}
	education, err = encode(p.Education)
	return
}

func (s *ProfileStore) Create(ctx context.Context, profile *model.Profile) error {
	profile.ID = xid.New().String()
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	skills, social, experience, education, err := profileColumns(profile)
	if err != nil {
		return fmt.Errorf("sqlite: encoding profile: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, company, website, location, bio, status,
		                       githubusername, skills, social, experience, education,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.UserID, profile.Company, profile.Website, profile.Location,
		profile.Bio, profile.Status, profile.GitHubUsername,
		skills, social, experience, education,
		toUnix(profile.CreatedAt), toUnix(profile.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("profile for user", profile.UserID)
		}
		return fmt.Errorf("sqlite: inserting profile for user %s: %w", profile.UserID, err)
	}

	return nil
}

func (s *ProfileStore) Update(ctx context.Context, profile *model.Profile) error {
	profile.UpdatedAt = time.Now()

	skills, social, experience, education, err := profileColumns(profile)
	if err != nil {
		return fmt.Errorf("sqlite: encoding profile: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE profiles
		 SET company = ?, website = ?, location = ?, bio = ?, status = ?,
		     githubusername = ?, skills = ?, social = ?, experience = ?, education = ?,
		     updated_at = ?
		 WHERE id = ?`,
		profile.Company, profile.Website, profile.Location, profile.Bio, profile.Status,
		profile.GitHubUsername, skills, social, experience, education,
		toUnix(profile.UpdatedAt),
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s: %w", profile.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("profile", profile.ID)
	}

	return nil
}

func (s *ProfileStore) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting profile for user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("profile for user", userID)
	}

	return nil
}
