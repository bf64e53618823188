package engine

import (
	"context"
	"testing"
	"time"
)

// resetCache gives each test a fresh L1-only cache.
func resetCache(maxEntries int) {
	previewCache = &tieredCache{ttl: time.Minute, maxEntries: maxEntries}
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey("youtube_preview", "https://youtu.be/abc")
	b := CacheKey("youtube_preview", "https://youtu.be/abc")
	if a != b {
		t.Errorf("same parts produced different keys: %q vs %q", a, b)
	}
	c := CacheKey("youtube_preview", "https://youtu.be/def")
	if a == c {
		t.Error("different parts produced the same key")
	}
}

func TestCacheSetGet(t *testing.T) {
	resetCache(10)
	ctx := context.Background()

	key := CacheKey("test", "a")
	CacheSet(ctx, key, []byte(`{"url":"u"}`))

	data, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != `{"url":"u"}` {
		t.Errorf("unexpected cached data: %s", data)
	}
}

func TestCacheMiss(t *testing.T) {
	resetCache(10)
	if _, ok := CacheGet(context.Background(), CacheKey("never", "stored")); ok {
		t.Error("expected cache miss")
	}
}

func TestCacheJSONRoundTrip(t *testing.T) {
	resetCache(10)
	ctx := context.Background()

	in := PreviewOutput{URL: "https://youtu.be/abc", VideoID: "abc", Title: "Talk"}
	key := CacheKey("preview", in.URL)
	CacheStoreJSON(ctx, key, in)

	out, ok := CacheLoadJSON[PreviewOutput](ctx, key)
	if !ok {
		t.Fatal("expected hit")
	}
	if out.Title != in.Title || out.VideoID != in.VideoID {
		t.Errorf("round-trip mismatch: %+v", out)
	}
}

func TestCacheExpiry(t *testing.T) {
	resetCache(10)
	previewCache.ttl = -time.Second // everything stored is already expired
	ctx := context.Background()

	key := CacheKey("test", "expired")
	CacheSet(ctx, key, []byte("x"))

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheEviction(t *testing.T) {
	resetCache(2)
	ctx := context.Background()

	CacheSet(ctx, "k1", []byte("1"))
	CacheSet(ctx, "k2", []byte("2"))
	CacheSet(ctx, "k3", []byte("3"))

	count := 0
	previewCache.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 2 {
		t.Errorf("expected at most 2 entries after eviction, got %d", count)
	}
}

func TestParseVideoMeta(t *testing.T) {
	body := []byte(`<html><head>
		<title>Go Concurrency Patterns - YouTube</title>
		<meta name="description" content="A talk about goroutines.">
		<meta property="og:title" content="Go Concurrency Patterns">
	</head><body></body></html>`)

	title, desc := parseVideoMeta(body)
	if title != "Go Concurrency Patterns" {
		t.Errorf("title = %q", title)
	}
	if desc != "A talk about goroutines." {
		t.Errorf("description = %q", desc)
	}
}
