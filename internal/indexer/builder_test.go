package indexer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/internal/transcript"
	"github.com/vidsage/vidsage/pkg/observability"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// fakeEmbedder returns deterministic unit vectors and counts calls.
type fakeEmbedder struct {
	embedCalls atomic.Int32
	queryCalls atomic.Int32
}

func (f *fakeEmbedder) vector(text string) []float32 {
	var sum int
	for _, r := range text {
		sum += int(r)
	}
	angle := float32(sum%97) / 97.0
	return []float32{angle, 1 - angle, 0.5}
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.embedCalls.Add(1)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queryCalls.Add(1)
	return f.vector(text), nil
}

type fakeFetcher struct {
	segments []transcript.Segment
	err      error
	calls    atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	f.calls.Add(1)
	return f.segments, f.err
}

func testSegments() []transcript.Segment {
	return []transcript.Segment{
		{Text: "welcome to the deep dive on goroutines", Start: 0},
		{Text: "channels are how goroutines communicate", Start: 4.2},
		{Text: "select lets you wait on several channels", Start: 9.1},
	}
}

func newTestBuilder(fetcher transcript.Fetcher, embedder *fakeEmbedder) *Builder {
	return NewBuilder(fetcher, NewChunker(2000, 150), embedder, nil, observability.NewNoopLogger())
}

func TestBuilderBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("builds index from transcript", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		b := newTestBuilder(&fakeFetcher{segments: testSegments()}, embedder)

		idx, err := b.Build(ctx, testVideoURL)
		require.NoError(t, err)
		assert.Equal(t, "dQw4w9WgXcQ", idx.VideoID)
		assert.NotEmpty(t, idx.Chunks)
		assert.Equal(t, 3, idx.Dimension)
		assert.Equal(t, int32(1), embedder.embedCalls.Load())
	})

	t.Run("invalid url", func(t *testing.T) {
		b := newTestBuilder(&fakeFetcher{}, &fakeEmbedder{})

		_, err := b.Build(ctx, "https://example.com/nope")
		var invalid *transcript.InvalidURLError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("fetch errors propagate typed", func(t *testing.T) {
		fetchErr := &transcript.TranscriptUnavailableError{VideoID: "dQw4w9WgXcQ", Reason: "disabled"}
		b := newTestBuilder(&fakeFetcher{err: fetchErr}, &fakeEmbedder{})

		_, err := b.Build(ctx, testVideoURL)
		var unavailable *transcript.TranscriptUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("whitespace-only transcript is empty", func(t *testing.T) {
		b := newTestBuilder(&fakeFetcher{segments: []transcript.Segment{}}, &fakeEmbedder{})

		_, err := b.Build(ctx, testVideoURL)
		var empty *transcript.EmptyTranscriptError
		assert.ErrorAs(t, err, &empty)
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		embedder := &failingEmbedder{}
		b := NewBuilder(&fakeFetcher{segments: testSegments()}, NewChunker(2000, 150), embedder, nil, observability.NewNoopLogger())

		_, err := b.Build(ctx, testVideoURL)
		assert.Error(t, err)
	})
}

type failingEmbedder struct{}

func (f *failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("quota exceeded")
}

func (f *failingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("quota exceeded")
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{}
	b := newTestBuilder(&fakeFetcher{segments: testSegments()}, embedder)

	idx, err := b.Build(ctx, testVideoURL)
	require.NoError(t, err)

	snapshot := idx.Snapshot()
	assert.Equal(t, idx.VideoID, snapshot.VideoID)
	assert.Len(t, snapshot.Embeddings, len(idx.Chunks))

	embedsBefore := embedder.embedCalls.Load()
	restored, err := b.Hydrate(ctx, snapshot)
	require.NoError(t, err)

	// Hydration must not trigger any embedding calls.
	assert.Equal(t, embedsBefore, embedder.embedCalls.Load())
	assert.Equal(t, idx.Chunks, restored.Chunks)
	assert.Equal(t, idx.Dimension, restored.Dimension)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	newTestStore := func(t *testing.T, fetcher *fakeFetcher, embedder *fakeEmbedder) *Store {
		t.Helper()
		vc := cache.NewVideoCache(cache.NewMemoryCache(0), cache.DefaultTTLConfig(), observability.NewNoopLogger())
		store, err := NewStore(newTestBuilder(fetcher, embedder), vc, 8, observability.NewNoopLogger())
		require.NoError(t, err)
		return store
	}

	t.Run("first get builds, second get reuses", func(t *testing.T) {
		fetcher := &fakeFetcher{segments: testSegments()}
		embedder := &fakeEmbedder{}
		store := newTestStore(t, fetcher, embedder)

		idx1, err := store.Get(ctx, testVideoURL)
		require.NoError(t, err)
		assert.True(t, store.Warm(ctx, testVideoURL))

		idx2, err := store.Get(ctx, testVideoURL)
		require.NoError(t, err)
		assert.Same(t, idx1, idx2)

		// One fetch, one embed batch for both gets.
		assert.Equal(t, int32(1), fetcher.calls.Load())
		assert.Equal(t, int32(1), embedder.embedCalls.Load())
	})

	t.Run("hydrates from snapshot without embedding", func(t *testing.T) {
		fetcher := &fakeFetcher{segments: testSegments()}
		embedder := &fakeEmbedder{}

		vc := cache.NewVideoCache(cache.NewMemoryCache(0), cache.DefaultTTLConfig(), observability.NewNoopLogger())
		builder := newTestBuilder(fetcher, embedder)

		warm, err := NewStore(builder, vc, 8, observability.NewNoopLogger())
		require.NoError(t, err)
		_, err = warm.Get(ctx, testVideoURL)
		require.NoError(t, err)

		// A second store sharing the same cache simulates a restart:
		// its hydrated LRU is empty but the snapshot is live.
		cold, err := NewStore(builder, vc, 8, observability.NewNoopLogger())
		require.NoError(t, err)

		embedsBefore := embedder.embedCalls.Load()
		idx, err := cold.Get(ctx, testVideoURL)
		require.NoError(t, err)
		assert.NotEmpty(t, idx.Chunks)
		assert.Equal(t, embedsBefore, embedder.embedCalls.Load())
		assert.Equal(t, int32(1), fetcher.calls.Load())
	})

	t.Run("build failure propagates", func(t *testing.T) {
		fetcher := &fakeFetcher{err: &transcript.NetworkError{Err: errors.New("timeout")}}
		store := newTestStore(t, fetcher, &fakeEmbedder{})

		_, err := store.Get(ctx, testVideoURL)
		var netErr *transcript.NetworkError
		assert.ErrorAs(t, err, &netErr)
		assert.False(t, store.Warm(ctx, testVideoURL))
	})
}
