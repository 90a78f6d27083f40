// Package retrieval selects the transcript chunks most relevant to a
// query from a built video index.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/vidsage/vidsage/internal/indexer"
	"github.com/vidsage/vidsage/pkg/observability"
)

// DefaultTopK is the standard number of chunks fed into answer prompts.
const DefaultTopK = 4

// ScoredChunk is a retrieved chunk with its distance from the query.
// Smaller distance means more relevant.
type ScoredChunk struct {
	Chunk    indexer.Chunk
	Distance float32
}

// Retriever runs similarity queries against video indexes.
type Retriever struct {
	logger observability.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(logger observability.Logger) *Retriever {
	return &Retriever{logger: logger.WithPrefix("retrieval")}
}

// TopK returns up to k chunks ordered by ascending distance, with ties
// broken by chunk position. The query is embedded exactly once. k
// larger than the index returns everything; k of zero or less is an
// error.
func (r *Retriever) TopK(ctx context.Context, idx *indexer.VideoIndex, query string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	results, err := idx.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, res := range results {
		pos, err := indexer.ChunkIndexFromResult(res)
		if err != nil {
			return nil, err
		}
		chunk, ok := idx.ChunkByIndex(pos)
		if !ok {
			return nil, fmt.Errorf("result references unknown chunk %d", pos)
		}
		scored = append(scored, ScoredChunk{
			Chunk:    chunk,
			Distance: 1 - res.Similarity,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].Chunk.Index < scored[j].Chunk.Index
	})

	r.logger.Debug("Retrieved chunks", map[string]interface{}{
		"video_id":  idx.VideoID,
		"requested": k,
		"returned":  len(scored),
	})
	return scored, nil
}
