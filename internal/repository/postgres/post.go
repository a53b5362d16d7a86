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

type PostStore struct {
	pool *pgxpool.Pool
}

var _ repository.PostRepository = (*PostStore)(nil)

const selectPost = `
	SELECT id, user_id, text, name, avatar, likes, comments, created_at
	FROM posts`

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.Likes, &p.Comments, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
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

func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	normalizePost(post)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO posts (id, user_id, text, name, avatar, likes, comments, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		post.ID, post.UserID, post.Text, post.Name, post.Avatar,
		post.Likes, post.Comments, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting post: %w", err)
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx, selectPost+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("postgres: getting post %s: %w", id, err)
	}
	return p, nil
}

func (s *PostStore) List(ctx context.Context) ([]model.Post, error) {
	rows, err := s.pool.Query(ctx, selectPost+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) Update(ctx context.Context, post *model.Post) error {
	normalizePost(post)

	tag, err := s.pool.Exec(ctx,
		`UPDATE posts SET text = $1, likes = $2, comments = $3 WHERE id = $4`,
		post.Text, post.Likes, post.Comments, post.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating post %s: %w", post.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("post", post.ID)
	}
	return nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting post %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}
