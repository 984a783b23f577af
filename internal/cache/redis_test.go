package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			fetches++
			dest.Slug = "hello-world"
			dest.Title = "Hello World"
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey("hello-world"), &first, PostTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "Hello World", first.Title)

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey("hello-world"), &second, PostTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should be served from cache")
	assert.Equal(t, "Hello World", second.Title)
}

func TestAside_NilClientPassthrough(t *testing.T) {
	SetClient(nil)

	fetches := 0
	var dest cachedPost
	err := Aside(context.Background(), PostKey("x"), &dest, time.Minute, func() error {
		fetches++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
}

func TestInvalidatePost(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(PostKey("a"), `{"slug":"a"}`))
	require.NoError(t, mr.Set(PostsListKey(), `[]`))

	InvalidatePost(ctx, "a")

	assert.False(t, mr.Exists(PostKey("a")))
	assert.False(t, mr.Exists(PostsListKey()))
}

func TestAside_DropsCorruptEntries(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(PostKey("bad"), "not-json"))

	fetches := 0
	var dest cachedPost
	err := Aside(ctx, PostKey("bad"), &dest, time.Minute, func() error {
		fetches++
		dest.Slug = "bad"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
}
