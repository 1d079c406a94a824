package post

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
)

type fakePostRepo struct {
	posts map[uuid.UUID]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]*model.Post)}
}

func (f *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	post.ID = uuid.New()
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) Get(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post", nil)
	}
	return post, nil
}

func (f *fakePostRepo) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	for _, post := range f.posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return nil, apperrors.NotFound("post", nil)
}

func (f *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) List(ctx context.Context, filters *model.PostFilters) ([]*model.Post, error) {
	var out []*model.Post
	for _, post := range f.posts {
		out = append(out, post)
	}
	return out, nil
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Donation Drive 2026": "donation-drive-2026",
		"  Why O- Matters!  ": "why-o-matters",
		"Ràre types & you":    "r-re-types-you",
		"---":                 "",
		"already-a-slug":      "already-a-slug",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), "slugify(%q)", in)
	}
}

func TestCreatePostSetsSlugAndPublishedAt(t *testing.T) {
	svc := NewService(newFakePostRepo())

	post, err := svc.CreatePost(context.Background(), uuid.New(), &model.CreatePostRequest{
		Title:     "Donor Stories: First Time",
		Body:      "body",
		Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "donor-stories-first-time", post.Slug)
	assert.NotNil(t, post.PublishedAt)

	draft, err := svc.CreatePost(context.Background(), uuid.New(), &model.CreatePostRequest{
		Title: "Draft",
		Body:  "body",
	})
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)
}

func TestUpdatePostPublishesOnce(t *testing.T) {
	svc := NewService(newFakePostRepo())
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, uuid.New(), &model.CreatePostRequest{Title: "T", Body: "b"})
	require.NoError(t, err)

	published := true
	updated, err := svc.UpdatePost(ctx, post.ID, &model.UpdatePostRequest{Published: &published})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	first := *updated.PublishedAt

	// Re-publishing keeps the original timestamp.
	again, err := svc.UpdatePost(ctx, post.ID, &model.UpdatePostRequest{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, first, *again.PublishedAt)
}
