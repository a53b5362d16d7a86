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
	"github.com/sakif/devlink/internal/model"
	"github.com/sakif/devlink/internal/repository"
	"github.com/sakif/devlink/internal/validate"
)

// PostInput is the body of a new post.
type PostInput struct {
	Text string `json:"text" validate:"notblank" msg:"Text is required"`
}

// CommentInput is the body of a new comment.
type CommentInput struct {
	Text string `json:"text" validate:"notblank" msg:"Text is required"`
}

// PostService manages posts and their likes and comments.
//
// Like and comment changes read the post, change the list and write the
// whole list back. Two concurrent changes to one post race and the later
// write wins.
type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	validate *validate.Validator
	logger   *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	v *validate.Validator,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		validate: v,
		logger:   logger,
	}
}

// Create publishes a post, snapshotting the author's name and avatar.
func (s *PostService) Create(ctx context.Context, userID string, in PostInput) (*model.Post, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/post: loading author %s: %w", userID, err)
	}

	post := &model.Post{
		UserID:   userID,
		Text:     in.Text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []model.Like{},
		Comments: []model.Comment{},
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("userID", userID),
	)
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	return posts, nil
}

// Get returns one post. A malformed id reads as a missing post.
func (s *PostService) Get(ctx context.Context, postID string) (*model.Post, error) {
	if !validID(postID) {
		return nil, postNotFound()
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, postNotFound()
		}
		return nil, fmt.Errorf("service/post: loading post %s: %w", postID, err)
	}
	return post, nil
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return notAuthorized()
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("service/post: deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted",
		slog.String("postID", postID),
		slog.String("userID", userID),
	)
	return nil
}

// Like prepends the caller's like and returns the likes list.
func (s *PostService) Like(ctx context.Context, userID, postID string) ([]model.Like, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.AddLike(userID) {
		return nil, apperror.AlreadyLiked()
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: liking post %s: %w", postID, err)
	}
	return post.Likes, nil
}

// Unlike removes the caller's like and returns the likes list.
func (s *PostService) Unlike(ctx context.Context, userID, postID string) ([]model.Like, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.RemoveLike(userID) {
		return nil, apperror.NotLiked()
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: unliking post %s: %w", postID, err)
	}
	return post.Likes, nil
}

// AddComment prepends a comment with a fresh sub-id and returns the
// comments list.
func (s *PostService) AddComment(ctx context.Context, userID, postID string, in CommentInput) ([]model.Comment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/post: loading author %s: %w", userID, err)
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:        xid.New().String(),
		UserID:    userID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: time.Now(),
	}
	post.Comments = append([]model.Comment{comment}, post.Comments...)

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: commenting on post %s: %w", postID, err)
	}
	return post.Comments, nil
}

// RemoveComment deletes one comment. Only the comment's author may do so.
func (s *PostService) RemoveComment(ctx context.Context, userID, postID, commentID string) ([]model.Comment, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(strings.TrimSpace(commentID))
	if comment == nil {
		return nil, apperror.NotFoundMessage("Comment does not exist")
	}
	if comment.UserID != userID {
		return nil, notAuthorized()
	}

	post.RemoveComment(comment.ID)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: removing comment %s: %w", commentID, err)
	}
	return post.Comments, nil
}

func postNotFound() *apperror.AppError {
	return apperror.NotFoundMessage("Post not found")
}

func notAuthorized() *apperror.AppError {
	return apperror.Forbidden("User not authorized")
}
