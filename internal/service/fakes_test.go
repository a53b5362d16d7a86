package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/github"
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/validate"
)

// The fakes below are in-memory implementations of the repository
// interfaces. They store copies so a test can't mutate stored state through
// a pointer it was handed, just as with a real database.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *validate.Validator {
	return validate.New()
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
	// set to a non-nil error to simulate a database failure
	err error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.DuplicateUser()
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFoundMessage("no user with that email")
}

func (f *fakeUserRepo) DeleteOne(_ context.Context, field, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for id, u := range f.users {
		var match bool
		switch field {
		case "id":
			match = u.ID == value
		case "email":
			match = u.Email == value
		case "name":
			match = u.Name == value
		}
		if match {
			delete(f.users, id)
			return true, nil
		}
	}
	return false, nil
}

// add stores a user directly and returns it with its id.
func (f *fakeUserRepo) add(name, email string) model.User {
	u := model.User{Name: name, Email: email, Avatar: "//avatar/" + name}
	if err := f.Create(context.Background(), &u); err != nil {
		panic(err)
	}
	return u
}

// --- profiles ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]model.Profile // keyed by user id
	users    *fakeUserRepo
	updates  int
	err      error
}

func newFakeProfileRepo(users *fakeUserRepo) *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]model.Profile), users: users}
}

func copyProfile(p model.Profile) model.Profile {
	p.Skills = append([]string{}, p.Skills...)
	p.Experience = append([]model.Experience{}, p.Experience...)
	p.Education = append([]model.Education{}, p.Education...)
	if p.Social != nil {
		s := *p.Social
		p.Social = &s
	}
	return p
}

func (f *fakeProfileRepo) join(p model.Profile) *model.Profile {
	out := copyProfile(p)
	out.User = model.Author{ID: p.UserID}
	if u, ok := f.users.users[p.UserID]; ok {
		out.User.Name = u.Name
		out.User.Avatar = u.Avatar
	}
	return &out
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile for user", userID)
	}
	return f.join(p), nil
}

func (f *fakeProfileRepo) List(_ context.Context) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Profile{}
	for _, p := range f.profiles {
		out = append(out, *f.join(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.profiles[profile.UserID]; ok {
		return apperror.Conflict("profile for user", profile.UserID)
	}
	profile.ID = xid.New().String()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	f.profiles[profile.UserID] = copyProfile(*profile)
	return nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	stored, ok := f.profiles[profile.UserID]
	if !ok || stored.ID != profile.ID {
		return apperror.NotFound("profile", profile.ID)
	}
	profile.UpdatedAt = time.Now()
	f.profiles[profile.UserID] = copyProfile(*profile)
	f.updates++
	return nil
}

func (f *fakeProfileRepo) DeleteByUserID(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.profiles[userID]; !ok {
		return apperror.NotFound("profile for user", userID)
	}
	delete(f.profiles, userID)
	return nil
}

// --- posts ---

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]model.Post
	err   error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]model.Post)}
}

func copyPost(p model.Post) model.Post {
	p.Likes = append([]model.Like{}, p.Likes...)
	p.Comments = append([]model.Comment{}, p.Comments...)
	return p
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	post.ID = xid.New().String()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	f.posts[post.ID] = copyPost(*post)
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	out := copyPost(p)
	return &out, nil
}

func (f *fakePostRepo) List(_ context.Context) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Post{}
	for _, p := range f.posts {
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[post.ID]; !ok {
		return apperror.NotFound("post", post.ID)
	}
	f.posts[post.ID] = copyPost(*post)
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(f.posts, id)
	return nil
}

// --- github ---

type fakeRepoLister struct {
	repos    []github.Repo
	err      error
	username string
}

func (f *fakeRepoLister) ListRepos(_ context.Context, username string) ([]github.Repo, error) {
	f.username = username
	if f.err != nil {
		return nil, f.err
	}
	return f.repos, nil
}
