package indexer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/vidsage/vidsage/internal/embedding"
)

// metadata key carrying the chunk position through the vector store.
const metaChunkIndex = "chunk_index"

// VideoIndex is the in-process similarity index for one video: the
// ordered chunks plus a vector collection over their embeddings.
type VideoIndex struct {
	VideoID    string
	VideoURL   string
	Chunks     []Chunk
	Dimension  int
	collection *chromem.Collection
	vectors    [][]float32
}

// IndexSnapshot is the serializable form of a VideoIndex. It carries
// the embedding vectors so a snapshot can be rehydrated without any new
// embedding calls.
type IndexSnapshot struct {
	VideoID    string      `json:"video_id"`
	VideoURL   string      `json:"video_url"`
	Chunks     []Chunk     `json:"chunks"`
	Embeddings [][]float32 `json:"embeddings"`
	Dimension  int         `json:"dimension"`
}

// Snapshot extracts the serializable state of the index.
func (idx *VideoIndex) Snapshot() *IndexSnapshot {
	return &IndexSnapshot{
		VideoID:    idx.VideoID,
		VideoURL:   idx.VideoURL,
		Chunks:     idx.Chunks,
		Embeddings: idx.vectors,
		Dimension:  idx.Dimension,
	}
}

// Query returns up to k results for the query text, most similar first.
// The query is embedded exactly once, through the collection's
// embedding function. k greater than the chunk count is clamped.
func (idx *VideoIndex) Query(ctx context.Context, query string, k int) ([]chromem.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if count := idx.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}
	return idx.collection.Query(ctx, query, k, nil, nil)
}

// ChunkByIndex returns the chunk at the given position.
func (idx *VideoIndex) ChunkByIndex(i int) (Chunk, bool) {
	if i < 0 || i >= len(idx.Chunks) {
		return Chunk{}, false
	}
	return idx.Chunks[i], true
}

func chunkDocID(index int) string {
	return "chunk-" + strconv.Itoa(index)
}

// newIndexFromVectors assembles a VideoIndex from chunks and their
// precomputed embeddings. Used both when building fresh and when
// rehydrating a snapshot; neither path makes embedding calls here.
func newIndexFromVectors(ctx context.Context, videoID, videoURL string, chunks []Chunk, vectors [][]float32, embedder embedding.Embedder) (*VideoIndex, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	embedQuery := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("video-"+videoID, nil, embedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	dimension := 0
	for i, chunk := range chunks {
		if len(vectors[i]) == 0 {
			return nil, fmt.Errorf("empty embedding for chunk %d", i)
		}
		dimension = len(vectors[i])
		err := collection.AddDocument(ctx, chromem.Document{
			ID:        chunkDocID(chunk.Index),
			Content:   chunk.Text,
			Embedding: vectors[i],
			Metadata: map[string]string{
				metaChunkIndex: strconv.Itoa(chunk.Index),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add chunk %d: %w", i, err)
		}
	}

	return &VideoIndex{
		VideoID:    videoID,
		VideoURL:   videoURL,
		Chunks:     chunks,
		Dimension:  dimension,
		collection: collection,
		vectors:    vectors,
	}, nil
}

// ChunkIndexFromResult parses the chunk position out of a query result.
func ChunkIndexFromResult(res chromem.Result) (int, error) {
	raw, ok := res.Metadata[metaChunkIndex]
	if !ok {
		return 0, fmt.Errorf("result %s has no chunk index", res.ID)
	}
	return strconv.Atoi(raw)
}
