package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	postKeyPrefix = "post:%s"
	postsListKey  = "posts:list"
	heroKey       = "hero"
)

const (
	PostTTL = 30 * time.Minute
	ListTTL = 5 * time.Minute
	HeroTTL = 10 * time.Minute
)

// PostKey returns the cache key for one post, addressed by slug.
func PostKey(slug string) string {
	return fmt.Sprintf(postKeyPrefix, slug)
}

// PostsListKey returns the cache key for the public posts list.
func PostsListKey() string {
	return postsListKey
}

// HeroKey returns the cache key for the hero section singleton.
func HeroKey() string {
	return heroKey
}

// Invalidate removes a single cache entry.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost removes a post entry and the list it may appear in.
func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
	Invalidate(ctx, PostsListKey())
}
