package server

import (
	"net/http"
	"testing"

	"atelier/internal/cache"
	"atelier/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostHandler(t *testing.T) {
	t.Run("json body with native links array", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
			"title":      "Hello World",
			"content":    "First post.",
			"links_data": []map[string]any{{"url": "http://a.com", "text": "A"}},
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, "hello-world", post.Slug)
		require.Len(t, post.Links, 1)
		assert.Equal(t, "http://a.com", post.Links[0].URL)
	})

	t.Run("multipart form with string-encoded links and files", func(t *testing.T) {
		app, _, store, _ := newTestApp(t)

		req := multipartRequest(t, http.MethodPost, "/api/posts", map[string]string{
			"title":      "Upload Post",
			"content":    "Body.",
			"links_data": `[{"url":"http://b.com","text":"B","order":3}]`,
		}, map[string][]string{
			"uploaded_images": {"one.png", "two.png"},
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var post models.Post
		decodeBody(t, resp, &post)
		require.Len(t, post.Links, 1)
		assert.Equal(t, 3, post.Links[0].Order)
		assert.Len(t, post.Images, 2)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("validation errors render field-keyed", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Contains(t, body, "title")
		assert.Contains(t, body, "content")
	})

	t.Run("duplicate title rejected", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
			"title": "Same", "content": "x",
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
			"title": "same", "content": "y",
		}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string][]string
		decodeBody(t, resp, &body)
		assert.Equal(t, []string{"A blog post with this title already exists."}, body["title"])
	})
}

func TestGetPostHandlers(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Readable", "content": "x",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	t.Run("get by slug", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/readable", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, "Readable", post.Title)
	})

	t.Run("unknown slug is 404", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("list envelope", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Count   int           `json:"count"`
			Results []models.Post `json:"results"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 1, body.Count)
		require.Len(t, body.Results, 1)
	})
}

func TestUpdatePostHandler(t *testing.T) {
	t.Run("omitted links stay, empty list clears", func(t *testing.T) {
		app, _, _, _ := newTestApp(t)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
			"title":      "Sync Target",
			"content":    "x",
			"links_data": []map[string]any{{"url": "http://a.com"}},
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/posts/sync-target", map[string]any{
			"content": "updated",
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, "updated", post.Content)
		assert.Len(t, post.Links, 1)

		resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/posts/sync-target", map[string]any{
			"links_data": []any{},
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &post)
		assert.Empty(t, post.Links)
	})
}

func TestPostLinkHandlers(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Linked", "content": "x",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/posts/linked/links", map[string]any{
		"url": "http://new.com", "text": "New", "order": 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var link models.Link
	decodeBody(t, resp, &link)
	require.NotZero(t, link.ID)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete,
		"/api/posts/linked/links/"+itoa(link.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Gone now.
	resp, err = app.Test(jsonRequest(t, http.MethodDelete,
		"/api/posts/linked/links/"+itoa(link.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetPostCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	app, _, _, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Cached", "content": "v1",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/cached", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.True(t, mr.Exists("post:cached"), "read should populate the cache")

	// A write to the post clears its cache entry and the list.
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/posts/cached", map[string]any{
		"content": "v2",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.False(t, mr.Exists("post:cached"))

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/cached", nil))
	require.NoError(t, err)
	var post models.Post
	decodeBody(t, resp, &post)
	assert.Equal(t, "v2", post.Content)
}

func TestPostImageHandlers(t *testing.T) {
	app, _, store, _ := newTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Gallery", "content": "Shots.",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Captions align positionally with the uploaded files.
	req := multipartRequest(t, http.MethodPost, "/api/posts/gallery/images", map[string]string{
		"images_meta": `[{"caption":"first"},{"caption":"second"}]`,
	}, map[string][]string{
		"uploaded_images": {"a.png", "b.png"},
	})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var images []models.Image
	decodeBody(t, resp, &images)
	require.Len(t, images, 2)
	assert.Equal(t, "first", images[0].Caption)
	assert.Equal(t, 2, store.Len())

	resp, err = app.Test(jsonRequest(t, http.MethodPut,
		"/api/posts/gallery/images/"+itoa(images[0].ID), map[string]any{"caption": "cover"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var image models.Image
	decodeBody(t, resp, &image)
	assert.Equal(t, "cover", image.Caption)

	// An append with no files is rejected.
	resp, err = app.Test(multipartRequest(t, http.MethodPost, "/api/posts/gallery/images", nil, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string][]string
	decodeBody(t, resp, &body)
	assert.Equal(t, []string{"At least one image file is required."}, body["uploaded_images"])

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/gallery/images", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &images)
	assert.Len(t, images, 2)
}
