package indexer

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/pkg/observability"
)

// Store resolves video indexes. The expiring cache is the authority: a
// live snapshot there means the index is warm, and hydration from a
// snapshot never re-embeds. Hydrated collections are held in a bounded
// process-local LRU so repeated queries skip rebuilding the structure.
type Store struct {
	builder    *Builder
	videoCache *cache.VideoCache
	hydrated   *lru.Cache[string, *VideoIndex]
	logger     observability.Logger
}

// NewStore creates a Store holding at most maxHydrated indexes in memory.
func NewStore(builder *Builder, videoCache *cache.VideoCache, maxHydrated int, logger observability.Logger) (*Store, error) {
	if maxHydrated <= 0 {
		maxHydrated = 32
	}
	hydrated, err := lru.New[string, *VideoIndex](maxHydrated)
	if err != nil {
		return nil, err
	}
	return &Store{
		builder:    builder,
		videoCache: videoCache,
		hydrated:   hydrated,
		logger:     logger.WithPrefix("index-store"),
	}, nil
}

// Get returns the index for a video URL, in order of preference: a
// hydrated index backed by a live snapshot, a rehydration of the cached
// snapshot, or a full rebuild from source.
func (s *Store) Get(ctx context.Context, videoURL string) (*VideoIndex, error) {
	key := cache.TranscriptKey(videoURL)

	if idx, ok := s.hydrated.Get(key); ok {
		// The snapshot TTL is the authority; a hydrated index whose
		// snapshot expired is stale and must be rebuilt.
		if s.videoCache.HasIndexSnapshot(ctx, videoURL) {
			return idx, nil
		}
		s.hydrated.Remove(key)
	}

	var snapshot IndexSnapshot
	if s.videoCache.GetIndexSnapshot(ctx, videoURL, &snapshot) {
		idx, err := s.builder.Hydrate(ctx, &snapshot)
		if err == nil {
			s.hydrated.Add(key, idx)
			s.logger.Debug("Hydrated index from snapshot", map[string]interface{}{
				"video_id": snapshot.VideoID,
				"chunks":   len(snapshot.Chunks),
			})
			return idx, nil
		}
		s.logger.Warn("Snapshot hydration failed, rebuilding", map[string]interface{}{
			"video_id": snapshot.VideoID,
			"error":    err.Error(),
		})
	}

	idx, err := s.builder.Build(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	s.videoCache.SetIndexSnapshot(ctx, videoURL, idx.Snapshot())
	s.hydrated.Add(key, idx)
	return idx, nil
}

// Warm reports whether a live snapshot exists for the video.
func (s *Store) Warm(ctx context.Context, videoURL string) bool {
	return s.videoCache.HasIndexSnapshot(ctx, videoURL)
}
