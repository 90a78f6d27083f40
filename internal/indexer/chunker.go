// Package indexer builds searchable similarity indexes over video
// transcripts.
package indexer

import (
	"strings"

	"github.com/vidsage/vidsage/internal/transcript"
)

// Chunk is one window of transcript text. Start is the start time of
// the earliest caption segment the chunk covers, in seconds.
type Chunk struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
}

// Chunker splits caption segments into overlapping character windows.
type Chunker struct {
	// ChunkSize is the approximate window size in characters.
	ChunkSize int

	// Overlap is the approximate number of characters shared between
	// consecutive chunks.
	Overlap int
}

// NewChunker creates a Chunker with the standard window geometry.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	if overlap < 0 || overlap >= chunkSize {
		// Keep the fallback inside the window so the geometry stays
		// coherent even for small chunk sizes.
		overlap = chunkSize / 10
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}
}

// Chunk windows the segments. Segment boundaries are never split, so a
// chunk may run slightly over ChunkSize. Every chunk records the start
// time of its first segment, and the windows always make forward
// progress regardless of geometry.
func (c *Chunker) Chunk(segments []transcript.Segment) []Chunk {
	var chunks []Chunk

	i := 0
	for i < len(segments) {
		var sb strings.Builder
		first := i
		end := i

		for end < len(segments) {
			if sb.Len() > 0 {
				if sb.Len()+1+len(segments[end].Text) > c.ChunkSize {
					break
				}
				sb.WriteByte(' ')
			}
			sb.WriteString(segments[end].Text)
			end++
			if sb.Len() >= c.ChunkSize {
				break
			}
		}

		// A single oversized segment still becomes its own chunk.
		if end == first {
			sb.WriteString(segments[first].Text)
			end = first + 1
		}

		text := strings.TrimSpace(sb.String())
		if text != "" {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Text:  text,
				Start: segments[first].Start,
			})
		}

		if end >= len(segments) {
			break
		}

		// Walk back from the window end to find where the next window
		// starts so consecutive chunks share roughly Overlap characters.
		next := end
		overlapLen := 0
		for next > first+1 && overlapLen < c.Overlap {
			next--
			overlapLen += len(segments[next].Text) + 1
		}
		if next <= first {
			next = first + 1
		}
		i = next
	}

	return chunks
}
