package repository

import (
	"context"
	"errors"
	"testing"

	"atelier/internal/cache"
	"atelier/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))

	post := &models.Post{
		Title:   "First Post",
		Slug:    "first-post",
		Content: "Hello.",
		Links: []models.Link{
			{URL: "http://a.com", Text: "A", Order: 1},
			{URL: "http://b.com", Text: "B", Order: 0},
		},
	}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	t.Run("get by id preloads ordered links", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, got.Links, 2)
		assert.Equal(t, "http://b.com", got.Links[0].URL)
		assert.Equal(t, "http://a.com", got.Links[1].URL)
	})

	t.Run("get by slug", func(t *testing.T) {
		got, err := repo.GetBySlug(ctx, "first-post")
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		_, err := repo.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("list and count", func(t *testing.T) {
		posts, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.Len(t, posts, 1)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("update", func(t *testing.T) {
		post.Content = "Edited."
		require.NoError(t, repo.Update(ctx, post))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edited.", got.Content)
	})

	t.Run("delete removes children", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, post.ID))

		_, err := repo.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, post.ID), gorm.ErrRecordNotFound)
	})
}

func TestPostRepositoryTitleTaken(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))

	post := &models.Post{Title: "My Post", Slug: "my-post", Content: "x"}
	require.NoError(t, repo.Create(ctx, post))

	t.Run("case-insensitive match", func(t *testing.T) {
		taken, err := repo.TitleTaken(ctx, "my post", 0)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("excludes the post being updated", func(t *testing.T) {
		taken, err := repo.TitleTaken(ctx, "My Post", post.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("free title", func(t *testing.T) {
		taken, err := repo.TitleTaken(ctx, "Another", 0)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestPostRepositoryDuplicateTitleTranslates(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.Post{Title: "Same", Slug: "same", Content: "x"}))
	err := repo.Create(ctx, &models.Post{Title: "Same", Slug: "same-2", Content: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPostRepositoryChildItems(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))

	post := &models.Post{
		Title:   "With Children",
		Slug:    "with-children",
		Content: "x",
		Links:   []models.Link{{URL: "http://a.com"}},
		Images:  []models.Image{{URL: "/media/x.png", PublicID: "x.png"}},
	}
	require.NoError(t, repo.Create(ctx, post))
	other := &models.Post{Title: "Other", Slug: "other", Content: "x"}
	require.NoError(t, repo.Create(ctx, other))

	linkID := post.Links[0].ID
	imageID := post.Images[0].ID

	t.Run("get link scoped to parent", func(t *testing.T) {
		link, err := repo.GetLink(ctx, post.ID, linkID)
		require.NoError(t, err)
		assert.Equal(t, "http://a.com", link.URL)

		_, err = repo.GetLink(ctx, other.ID, linkID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("delete link under wrong parent is not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteLink(ctx, other.ID, linkID), gorm.ErrRecordNotFound)
	})

	t.Run("delete link", func(t *testing.T) {
		require.NoError(t, repo.DeleteLink(ctx, post.ID, linkID))
		_, err := repo.GetLink(ctx, post.ID, linkID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("delete image scoped to parent", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteImage(ctx, other.ID, imageID), gorm.ErrRecordNotFound)
		require.NoError(t, repo.DeleteImage(ctx, post.ID, imageID))
	})
}

func TestPostRepositoryLeavesCacheToCaller(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := newTestDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Title: "Cached Post", Slug: "cached-post", Content: "v1"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, mr.Set(cache.PostKey(post.Slug), `{"content":"v1"}`))
	require.NoError(t, mr.Set(cache.PostsListKey(), `{"count":1}`))

	// A rolled-back transaction must not clear cache entries: a concurrent
	// read between the clear and the rollback would re-fill them with
	// uncommitted state. Invalidation happens after commit, in the handlers.
	rollbackErr := errors.New("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		post.Content = "v2"
		if err := repo.WithTx(tx).Update(ctx, post); err != nil {
			return err
		}
		return rollbackErr
	})
	require.ErrorIs(t, err, rollbackErr)
	assert.True(t, mr.Exists(cache.PostKey(post.Slug)))
	assert.True(t, mr.Exists(cache.PostsListKey()))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content)
}
