package model

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	Base
	AuthorID    uuid.UUID  `db:"author_id" json:"author_id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Body        string     `db:"body" json:"body"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
}

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	Body      string `json:"body" binding:"required"`
	Published bool   `json:"published"`
}

type UpdatePostRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=200"`
	Body      *string `json:"body"`
	Published *bool   `json:"published"`
}

type PostFilters struct {
	AuthorID      *uuid.UUID
	PublishedOnly bool
}
