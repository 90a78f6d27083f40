package indexer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidsage/vidsage/internal/transcript"
)

func segmentsOfSize(count, textLen int) []transcript.Segment {
	segments := make([]transcript.Segment, count)
	for i := range segments {
		segments[i] = transcript.Segment{
			Text:  strings.Repeat(string(rune('a'+i%26)), textLen),
			Start: float64(i) * 5.0,
		}
	}
	return segments
}

func TestChunker(t *testing.T) {
	t.Run("empty input yields no chunks", func(t *testing.T) {
		c := NewChunker(2000, 150)
		assert.Empty(t, c.Chunk(nil))
	})

	t.Run("short transcript yields one chunk", func(t *testing.T) {
		c := NewChunker(2000, 150)
		chunks := c.Chunk([]transcript.Segment{
			{Text: "hello world", Start: 0.5},
			{Text: "more text", Start: 3.0},
		})

		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world more text", chunks[0].Text)
		assert.Equal(t, 0.5, chunks[0].Start)
		assert.Equal(t, 0, chunks[0].Index)
	})

	t.Run("windows stay near the configured size", func(t *testing.T) {
		c := NewChunker(200, 40)
		chunks := c.Chunk(segmentsOfSize(50, 20))

		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk.Text), 200+21)
		}
	})

	t.Run("consecutive chunks overlap", func(t *testing.T) {
		c := NewChunker(200, 40)
		chunks := c.Chunk(segmentsOfSize(50, 20))
		require.Greater(t, len(chunks), 1)

		// The tail of each chunk reappears at the head of the next.
		for i := 1; i < len(chunks); i++ {
			head := chunks[i].Text[:20]
			assert.Contains(t, chunks[i-1].Text, head)
		}
	})

	t.Run("chunk start is the earliest covered segment start", func(t *testing.T) {
		c := NewChunker(100, 20)
		segments := segmentsOfSize(20, 30)
		chunks := c.Chunk(segments)
		require.Greater(t, len(chunks), 1)

		assert.Equal(t, segments[0].Start, chunks[0].Start)
		for i := 1; i < len(chunks); i++ {
			assert.Greater(t, chunks[i].Start, chunks[i-1].Start,
				"chunk starts must advance monotonically")
		}
	})

	t.Run("chunk order and indexes are sequential", func(t *testing.T) {
		c := NewChunker(150, 30)
		chunks := c.Chunk(segmentsOfSize(30, 25))
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Index)
		}
	})

	t.Run("single oversized segment becomes its own chunk", func(t *testing.T) {
		c := NewChunker(100, 20)
		big := strings.Repeat("x", 500)
		chunks := c.Chunk([]transcript.Segment{{Text: big, Start: 1.0}})

		require.Len(t, chunks, 1)
		assert.Equal(t, big, chunks[0].Text)
	})

	t.Run("pathological overlap still makes progress", func(t *testing.T) {
		// Overlap >= chunk size is rejected at construction; the fallback
		// must itself fit inside the window.
		c := NewChunker(50, 500)
		assert.Equal(t, 5, c.Overlap)
		assert.Less(t, c.Overlap, c.ChunkSize)

		chunks := c.Chunk(segmentsOfSize(100, 10))
		assert.NotEmpty(t, chunks)
	})

	t.Run("every segment is covered", func(t *testing.T) {
		c := NewChunker(120, 30)
		segments := make([]transcript.Segment, 40)
		for i := range segments {
			segments[i] = transcript.Segment{Text: fmt.Sprintf("seg%02d", i), Start: float64(i)}
		}

		chunks := c.Chunk(segments)
		all := ""
		for _, chunk := range chunks {
			all += chunk.Text + " "
		}
		for i := range segments {
			assert.Contains(t, all, fmt.Sprintf("seg%02d", i))
		}
	})
}
