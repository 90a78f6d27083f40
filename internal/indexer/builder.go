package indexer

import (
	"context"
	"strings"

	"github.com/vidsage/vidsage/internal/embedding"
	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/internal/transcript"
	"github.com/vidsage/vidsage/pkg/observability"
)

// Builder turns a video URL into a fresh VideoIndex: fetch captions,
// chunk, embed, index.
type Builder struct {
	fetcher  transcript.Fetcher
	chunker  *Chunker
	embedder embedding.Embedder
	breaker  *resilience.Breaker
	logger   observability.Logger
}

// NewBuilder creates a Builder. The breaker guards the upstream caption
// fetch and may be nil.
func NewBuilder(fetcher transcript.Fetcher, chunker *Chunker, embedder embedding.Embedder, breaker *resilience.Breaker, logger observability.Logger) *Builder {
	return &Builder{
		fetcher:  fetcher,
		chunker:  chunker,
		embedder: embedder,
		breaker:  breaker,
		logger:   logger.WithPrefix("index-builder"),
	}
}

// Build constructs the index for a video URL. Failures carry their
// cause as a typed error: InvalidURLError, TranscriptUnavailableError,
// NetworkError or EmptyTranscriptError.
func (b *Builder) Build(ctx context.Context, videoURL string) (*VideoIndex, error) {
	videoID, err := transcript.ParseVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	var segments []transcript.Segment
	fetch := func() error {
		var ferr error
		segments, ferr = b.fetcher.Fetch(ctx, videoID)
		return ferr
	}
	if b.breaker != nil {
		err = b.breaker.Execute(fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(transcript.FullText(segments)) == "" {
		return nil, &transcript.EmptyTranscriptError{VideoID: videoID}
	}

	chunks := b.chunker.Chunk(segments)
	if len(chunks) == 0 {
		return nil, &transcript.EmptyTranscriptError{VideoID: videoID}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := b.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	idx, err := newIndexFromVectors(ctx, videoID, videoURL, chunks, vectors, b.embedder)
	if err != nil {
		return nil, err
	}

	b.logger.Info("Built video index", map[string]interface{}{
		"video_id":  videoID,
		"segments":  len(segments),
		"chunks":    len(chunks),
		"dimension": idx.Dimension,
	})
	return idx, nil
}

// Hydrate reassembles a VideoIndex from a cached snapshot without any
// embedding calls.
func (b *Builder) Hydrate(ctx context.Context, snapshot *IndexSnapshot) (*VideoIndex, error) {
	return newIndexFromVectors(ctx, snapshot.VideoID, snapshot.VideoURL, snapshot.Chunks, snapshot.Embeddings, b.embedder)
}
