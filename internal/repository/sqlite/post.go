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

// PostStore is the posts collection.
type PostStore struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostStore)(nil)

const selectPost = `
	SELECT id, user_id, text, name, avatar, likes, comments, created_at
	FROM posts`

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	var likes, comments string
	var created int64

	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &likes, &comments, &created); err != nil {
		return nil, err
	}

	if err := decode(likes, &p.Likes); err != nil {
		return nil, fmt.Errorf("decoding likes: %w", err)
	}
	if err := decode(comments, &p.Comments); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}

	p.CreatedAt = fromUnix(created)
	normalizePost(&p)
	return &p, nil
}

func normalizePost(p *model.Post) {
	if p.Likes == nil {
		p.Likes = []model.Like{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
}

func postColumns(p *model.Post) (likes, comments string, err error) {
	normalizePost(p)
	if likes, err = encode(p.Likes); err != nil {
		return
	}
	comments, err = encode(p.Comments)
	return
}

func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	likes, comments, err := postColumns(post)
	if err != nil {
		return fmt.Errorf("sqlite: encoding post: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, text, name, avatar, likes, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Text,
		post.Name,
		post.Avatar,
		likes,
		comments,
		toUnix(post.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(s.conn.QueryRowContext(ctx, selectPost+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return p, nil
}

func (s *PostStore) List(ctx context.Context) ([]model.Post, error) {
	rows, err := s.conn.QueryContext(ctx, selectPost+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

func (s *PostStore) Update(ctx context.Context, post *model.Post) error {
	likes, comments, err := postColumns(post)
	if err != nil {
		return fmt.Errorf("sqlite: encoding post: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE posts SET text = ?, likes = ?, comments = ? WHERE id = ?`,
		post.Text,
		likes,
		comments,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
