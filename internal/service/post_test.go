package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/devlink/internal/apperror"
	"github.com/sakif/devlink/internal/model"
)

type postFixture struct {
	svc   *PostService
	posts *fakePostRepo
	users *fakeUserRepo
	ada   model.User
	grace model.User
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	return &postFixture{
		svc:   NewPostService(posts, users, testValidator(), testLogger()),
		posts: posts,
		users: users,
		ada:   users.add("Ada", "ada@example.com"),
		grace: users.add("Grace", "grace@example.com"),
	}
}

func (f *postFixture) createPost(t *testing.T, author model.User, text string) *model.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), author.ID, PostInput{Text: text})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return post
}

func TestCreatePost_SnapshotsAuthor(t *testing.T) {
	f := newPostFixture(t)

	post := f.createPost(t, f.ada, "hello")

	if post.Name != "Ada" || post.Avatar != f.ada.Avatar || post.UserID != f.ada.ID {
		t.Errorf("author snapshot = %q/%q/%q", post.Name, post.Avatar, post.UserID)
	}
	if post.Likes == nil || post.Comments == nil {
		t.Error("new post should have empty, non-nil lists")
	}
	if post.ID == "" || post.CreatedAt.IsZero() {
		t.Errorf("ID/CreatedAt not assigned: %+v", post)
	}
}

func TestCreatePost_EmptyText(t *testing.T) {
	f := newPostFixture(t)

	for _, text := range []string{"", "   "} {
		_, err := f.svc.Create(context.Background(), f.ada.ID, PostInput{Text: text})
		if !errors.Is(err, apperror.ErrValidation) || err.Error() != "Text is required" {
			t.Errorf("Create(%q) error = %v, want Text is required", text, err)
		}
	}
	if len(f.posts.posts) != 0 {
		t.Error("no post should be stored")
	}
}

func TestGetPost_NotFound(t *testing.T) {
	f := newPostFixture(t)

	for _, id := range []string{"malformed", "9m4e2mr0ui3e8a215n4g"} {
		_, err := f.svc.Get(context.Background(), id)
		if !errors.Is(err, apperror.ErrNotFound) || err.Error() != "Post not found" {
			t.Errorf("Get(%q) error = %v, want Post not found", id, err)
		}
	}
}

func TestDeletePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.ada, "mine")

	err := f.svc.Delete(ctx, f.grace.ID, post.ID)
	if !errors.Is(err, apperror.ErrForbidden) || err.Error() != "User not authorized" {
		t.Fatalf("Delete() by non-author error = %v, want Forbidden", err)
	}
	if _, err := f.svc.Get(ctx, post.ID); err != nil {
		t.Errorf("post should survive a rejected delete, Get() error = %v", err)
	}

	if err := f.svc.Delete(ctx, f.ada.ID, post.ID); err != nil {
		t.Fatalf("Delete() by author error = %v", err)
	}
	if _, err := f.svc.Get(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestListPosts_NewestFirst(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	first := f.createPost(t, f.ada, "first")
	second := f.createPost(t, f.grace, "second")
	// Force distinct timestamps regardless of clock resolution.
	stored := f.posts.posts[second.ID]
	stored.CreatedAt = first.CreatedAt.Add(1)
	f.posts.posts[second.ID] = stored

	posts, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 2 || posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Errorf("List() order = %v", posts)
	}
}

func TestLikeUnlike(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.ada, "like me")

	_, err := f.svc.Unlike(ctx, f.grace.ID, post.ID)
	if !errors.Is(err, apperror.ErrNotLiked) {
		t.Fatalf("Unlike() before like error = %v, want ErrNotLiked", err)
	}

	likes, err := f.svc.Like(ctx, f.grace.ID, post.ID)
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if len(likes) != 1 || likes[0].UserID != f.grace.ID {
		t.Fatalf("likes = %+v", likes)
	}

	likes, err = f.svc.Like(ctx, f.ada.ID, post.ID)
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if len(likes) != 2 || likes[0].UserID != f.ada.ID {
		t.Errorf("newest like should be first: %+v", likes)
	}

	_, err = f.svc.Like(ctx, f.grace.ID, post.ID)
	if !errors.Is(err, apperror.ErrAlreadyLiked) {
		t.Fatalf("second Like() error = %v, want ErrAlreadyLiked", err)
	}
	stored, _ := f.svc.Get(ctx, post.ID)
	if len(stored.Likes) != 2 {
		t.Errorf("a rejected like must not change the list: %+v", stored.Likes)
	}

	likes, err = f.svc.Unlike(ctx, f.grace.ID, post.ID)
	if err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	if len(likes) != 1 || likes[0].UserID != f.ada.ID {
		t.Errorf("likes after unlike = %+v", likes)
	}

	if _, err := f.svc.Like(ctx, f.grace.ID, "9m4e2mr0ui3e8a215n4g"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Like() on missing post error = %v, want ErrNotFound", err)
	}
}

func TestLikeThenUnlike_RestoresList(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.ada, "round trip")
	if _, err := f.svc.Like(ctx, f.ada.ID, post.ID); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	before, _ := f.svc.Get(ctx, post.ID)

	if _, err := f.svc.Like(ctx, f.grace.ID, post.ID); err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	likes, err := f.svc.Unlike(ctx, f.grace.ID, post.ID)
	if err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}

	if len(likes) != len(before.Likes) || likes[0] != before.Likes[0] {
		t.Errorf("likes = %+v, want %+v", likes, before.Likes)
	}
}

func TestComments(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.ada, "discuss")

	if _, err := f.svc.AddComment(ctx, f.grace.ID, post.ID, CommentInput{}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("AddComment() with empty text error = %v, want ErrValidation", err)
	}
	if _, err := f.svc.AddComment(ctx, f.grace.ID, "bogus", CommentInput{Text: "x"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("AddComment() on bogus post error = %v, want ErrNotFound", err)
	}

	comments, err := f.svc.AddComment(ctx, f.grace.ID, post.ID, CommentInput{Text: "first!"})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	comments, err = f.svc.AddComment(ctx, f.ada.ID, post.ID, CommentInput{Text: "thanks"})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "thanks" || comments[0].Name != "Ada" {
		t.Fatalf("comments = %+v", comments)
	}
	graceComment := comments[1]
	if graceComment.ID == "" || graceComment.ID == comments[0].ID {
		t.Errorf("comments need distinct sub-ids: %+v", comments)
	}

	_, err = f.svc.RemoveComment(ctx, f.ada.ID, post.ID, graceComment.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("RemoveComment() by non-author error = %v, want ErrForbidden", err)
	}

	_, err = f.svc.RemoveComment(ctx, f.grace.ID, post.ID, "missing")
	if !errors.Is(err, apperror.ErrNotFound) || err.Error() != "Comment does not exist" {
		t.Fatalf("RemoveComment() unknown comment error = %v", err)
	}

	comments, err = f.svc.RemoveComment(ctx, f.grace.ID, post.ID, graceComment.ID)
	if err != nil {
		t.Fatalf("RemoveComment() error = %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "thanks" {
		t.Errorf("comments after removal = %+v", comments)
	}

	stored, _ := f.svc.Get(ctx, post.ID)
	if len(stored.Comments) != 1 {
		t.Errorf("removal was not persisted: %+v", stored.Comments)
	}
}

func TestPostService_StoreFailure(t *testing.T) {
	f := newPostFixture(t)
	f.posts.err = errors.New("connection refused")

	_, err := f.svc.List(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("store failure should not read as not found: %v", err)
	}
}
