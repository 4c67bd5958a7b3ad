package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func newPost(title string, published bool, publishedAt *time.Time) *models.BlogPost {
	return &models.BlogPost{
		PostID:      uuid.Must(uuid.NewV7()),
		Title:       title,
		Slug:        models.Slugify(title),
		Content:     "body",
		AuthorID:    uuid.Must(uuid.NewV7()),
		IsPublished: published,
		PublishedAt: publishedAt,
	}
}

func TestBlogPostStore_SlugUniqueness(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, newPost("Securing LLM Pipelines", false, nil)))

	err := st.Create(ctx, newPost("Securing LLM Pipelines", false, nil))
	require.ErrorIs(t, err, store.ErrSlugTaken)
}

func TestBlogPostStore_GetBySlug(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()

	post := newPost("Securing LLM Pipelines", false, nil)
	require.NoError(t, st.Create(ctx, post))

	got, err := st.GetBySlug(ctx, "securing-llm-pipelines")
	require.NoError(t, err)
	require.Equal(t, post.PostID, got.PostID)

	_, err = st.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestBlogPostStore_UpdateReindexesSlug(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()

	post := newPost("Old Title", false, nil)
	require.NoError(t, st.Create(ctx, post))

	post.Title = "New Title"
	post.Slug = models.Slugify(post.Title)
	require.NoError(t, st.Update(ctx, post))

	_, err := st.GetBySlug(ctx, "old-title")
	require.ErrorIs(t, err, store.ErrPostNotFound)

	got, err := st.GetBySlug(ctx, "new-title")
	require.NoError(t, err)
	require.Equal(t, "New Title", got.Title)
}

func TestBlogPostStore_ListPublishedOnly(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, st.Create(ctx, newPost("Visible", true, &past)))
	require.NoError(t, st.Create(ctx, newPost("Scheduled", true, &future)))
	require.NoError(t, st.Create(ctx, newPost("Draft", false, nil)))
	// Published flag set but no timestamp: still hidden.
	require.NoError(t, st.Create(ctx, newPost("Flagged Only", true, nil)))

	posts, err := st.List(ctx, store.PostFilter{PublishedOnly: true, Now: now})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "Visible", posts[0].Title)

	all, err := st.List(ctx, store.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestBlogPostStore_ListFeatured(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()

	featured := newPost("Featured", false, nil)
	featured.Featured = true
	require.NoError(t, st.Create(ctx, featured))
	require.NoError(t, st.Create(ctx, newPost("Plain", false, nil)))

	yes := true
	posts, err := st.List(ctx, store.PostFilter{Featured: &yes})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "Featured", posts[0].Title)
}

func TestBlogPostStore_IncrementViews(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()

	post := newPost("Counted", false, nil)
	require.NoError(t, st.Create(ctx, post))

	require.NoError(t, st.IncrementViews(ctx, post.PostID))
	require.NoError(t, st.IncrementViews(ctx, post.PostID))

	got, err := st.Get(ctx, post.PostID)
	require.NoError(t, err)
	require.EqualValues(t, 2, got.Views)

	require.ErrorIs(t, st.IncrementViews(ctx, uuid.Must(uuid.NewV7())), store.ErrPostNotFound)
}

func TestBlogPostStore_UpdatePreservesViews(t *testing.T) {
	st := NewBlogPostStore()
	ctx := context.Background()

	post := newPost("Counted", false, nil)
	require.NoError(t, st.Create(ctx, post))
	require.NoError(t, st.IncrementViews(ctx, post.PostID))

	post.Views = 0
	require.NoError(t, st.Update(ctx, post))

	got, err := st.Get(ctx, post.PostID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Views)
}
