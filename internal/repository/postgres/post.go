package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
)

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (
			id, author_id, title, slug, body, published, published_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	post.ID = uuid.New()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Slug,
		post.Body,
		post.Published,
		post.PublishedAt,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepository) Get(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	query := `
		SELECT id, author_id, title, slug, body, published, published_at,
			   created_at, updated_at
		FROM posts
		WHERE id = $1 AND deleted_at IS NULL
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("post", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	query := `
		SELECT id, author_id, title, slug, body, published, published_at,
			   created_at, updated_at
		FROM posts
		WHERE slug = $1 AND deleted_at IS NULL
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("post", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, slug = $2, body = $3, published = $4,
			published_at = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	post.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		post.Title,
		post.Slug,
		post.Body,
		post.Published,
		post.PublishedAt,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("post", nil)
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE posts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("post", nil)
	}

	return nil
}

func (r *postRepository) List(ctx context.Context, filters *model.PostFilters) ([]*model.Post, error) {
	query := `
		SELECT id, author_id, title, slug, body, published, published_at,
			   created_at, updated_at
		FROM posts
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.AuthorID != nil {
		query += fmt.Sprintf(" AND author_id = $%d", argCount)
		args = append(args, *filters.AuthorID)
		argCount++
	}

	if filters != nil && filters.PublishedOnly {
		query += " AND published = TRUE"
	}

	query += " ORDER BY created_at DESC"

	var posts []*model.Post
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
