package post

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type Service struct {
	repo repository.PostRepository
}

func NewService(repo repository.PostRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, in *model.CreatePostRequest) (*model.Post, error) {
	post := &model.Post{
		AuthorID:  authorID,
		Title:     in.Title,
		Slug:      slugify(in.Title),
		Body:      in.Body,
		Published: in.Published,
	}
	if in.Published {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) ListPosts(ctx context.Context, filters *model.PostFilters) ([]*model.Post, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, in *model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = *in.Title
		post.Slug = slugify(*in.Title)
	}
	if in.Body != nil {
		post.Body = *in.Body
	}
	if in.Published != nil {
		post.Published = *in.Published
		if *in.Published && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
