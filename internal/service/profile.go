package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/github"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
	"github.com/sakif/devlink/internal/validate"
)

// RepoLister looks up a GitHub user's public repositories.
type RepoLister interface {
	ListRepos(ctx context.Context, username string) ([]github.Repo, error)
}

// ProfileInput is a partial profile update. Nil fields are left untouched.
// Skills is a comma-separated list. The social links are written together:
// when any of them is present, the whole social block is replaced.
type ProfileInput struct {
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Bio            *string `json:"bio"`
	Status         *string `json:"status"`
	GitHubUsername *string `json:"githubusername"`
	Skills         *string `json:"skills"`
	YouTube        *string `json:"youtube"`
	Twitter        *string `json:"twitter"`
	Facebook       *string `json:"facebook"`
	LinkedIn       *string `json:"linkedin"`
	Instagram      *string `json:"instagram"`
}

// ExperienceInput is a new work-history entry. Dates are "2006-01-02" or
// RFC 3339.
type ExperienceInput struct {
	Title       string `json:"title" validate:"notblank" msg:"Title is required"`
	Company     string `json:"company" validate:"notblank" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"notblank" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationInput is a new education entry.
type EducationInput struct {
	School       string `json:"school" validate:"notblank" msg:"School is required"`
	Degree       string `json:"degree" validate:"notblank" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"notblank" msg:"Field of study is required"`
	From         string `json:"from" validate:"notblank" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	repos    RepoLister
	validate *validate.Validator
	logger   *slog.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	repos RepoLister,
	v *validate.Validator,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
		repos:    repos,
		validate: v,
		logger:   logger,
	}
}

// GetOwn returns the caller's profile with their name and avatar.
func (s *ProfileService) GetOwn(ctx context.Context, userID string) (*model.Profile, error) {
	return s.own(ctx, userID)
}

// Upsert creates the caller's profile or updates it in place, writing only
// the fields present in in. Applying the same input twice leaves the same
// document.
func (s *ProfileService) Upsert(ctx context.Context, userID string, in ProfileInput) (*model.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/profile: loading profile for %s: %w", userID, err)
	}

	if profile != nil {
		in.apply(profile)
		if err := s.profiles.Update(ctx, profile); err != nil {
			return nil, fmt.Errorf("service/profile: updating profile for %s: %w", userID, err)
		}
		s.logger.Info("profile updated", slog.String("userID", userID))
		return profile, nil
	}

	profile = &model.Profile{
		UserID:     userID,
		Skills:     []string{},
		Experience: []model.Experience{},
		Education:  []model.Education{},
	}
	in.apply(profile)
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: creating profile for %s: %w", userID, err)
	}
	s.logger.Info("profile created", slog.String("userID", userID))

	// Re-read for the joined owner fields.
	created, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: reloading profile for %s: %w", userID, err)
	}
	return created, nil
}

func (in ProfileInput) apply(p *model.Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.Status, in.Status)
	set(&p.GitHubUsername, in.GitHubUsername)

	if in.Skills != nil {
		p.Skills = splitSkills(*in.Skills)
	}

	if in.YouTube != nil || in.Twitter != nil || in.Facebook != nil || in.LinkedIn != nil || in.Instagram != nil {
		var social model.Social
		set(&social.YouTube, in.YouTube)
		set(&social.Twitter, in.Twitter)
		set(&social.Facebook, in.Facebook)
		set(&social.LinkedIn, in.LinkedIn)
		set(&social.Instagram, in.Instagram)
		if social.IsZero() {
			p.Social = nil
		} else {
			p.Social = &social
		}
	}
}

// splitSkills turns "Go, SQL ,Docker" into [Go SQL Docker]. Empty items are
// dropped.
func splitSkills(s string) []string {
	skills := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			skills = append(skills, item)
		}
	}
	return skills
}

// List returns every profile.
func (s *ProfileService) List(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing profiles: %w", err)
	}
	return profiles, nil
}

// GetByUser returns the profile of any user. A malformed id reads as a
// missing profile.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	if !validID(userID) {
		return nil, profileNotFound()
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, profileNotFound()
		}
		return nil, fmt.Errorf("service/profile: loading profile for %s: %w", userID, err)
	}
	return profile, nil
}

// Delete removes the caller's profile and then asks the user collection to
// remove the account. The account lookup matches on a "user" field that user
// documents do not have, so the account survives; posts are never touched.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	err := s.profiles.DeleteByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/profile: deleting profile for %s: %w", userID, err)
	}

	removed, err := s.users.DeleteOne(ctx, "user", userID)
	if err != nil {
		return fmt.Errorf("service/profile: deleting account %s: %w", userID, err)
	}

	s.logger.Info("profile deleted",
		slog.String("userID", userID),
		slog.Bool("accountRemoved", removed),
	)
	return nil
}

// AddExperience prepends a work-history entry with a fresh sub-id.
func (s *ProfileService) AddExperience(ctx context.Context, userID string, in ExperienceInput) (*model.Profile, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := model.Experience{
		ID:          xid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	profile.Experience = append([]model.Experience{entry}, profile.Experience...)

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: adding experience for %s: %w", userID, err)
	}
	return profile, nil
}

// RemoveExperience drops the entry with the given sub-id. An unknown sub-id
// leaves the profile unchanged.
func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*model.Profile, error) {
	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.RemoveExperience(expID) {
		return profile, nil
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: removing experience for %s: %w", userID, err)
	}
	return profile, nil
}

// AddEducation prepends an education entry with a fresh sub-id.
func (s *ProfileService) AddEducation(ctx context.Context, userID string, in EducationInput) (*model.Profile, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	from, to, err := parseRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := model.Education{
		ID:           xid.New().String(),
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	profile.Education = append([]model.Education{entry}, profile.Education...)

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: adding education for %s: %w", userID, err)
	}
	return profile, nil
}

// RemoveEducation drops the entry with the given sub-id. An unknown sub-id
// leaves the profile unchanged.
func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*model.Profile, error) {
	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.RemoveEducation(eduID) {
		return profile, nil
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/profile: removing education for %s: %w", userID, err)
	}
	return profile, nil
}

// GitHubRepos proxies the repository listing of a GitHub user.
func (s *ProfileService) GitHubRepos(ctx context.Context, username string) ([]github.Repo, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.NotFoundMessage("No Github profile found")
	}
	repos, err := s.repos.ListRepos(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/profile: github repos for %s: %w", username, err)
	}
	return repos, nil
}

func (s *ProfileService) own(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage("There is no profile for this user")
		}
		return nil, fmt.Errorf("service/profile: loading profile for %s: %w", userID, err)
	}
	return profile, nil
}

func profileNotFound() *apperror.AppError {
	return apperror.NotFoundMessage("Profile not found")
}

// validID reports whether id has the shape of a generated id.
func validID(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field))
}

// parseRange parses the from date and the optional to date.
func parseRange(fromStr, toStr string) (time.Time, *time.Time, error) {
	from, err := parseDate("from", fromStr)
	if err != nil {
		return time.Time{}, nil, err
	}
	if strings.TrimSpace(toStr) == "" {
		return from, nil, nil
	}
	to, err := parseDate("to", toStr)
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, &to, nil
}
