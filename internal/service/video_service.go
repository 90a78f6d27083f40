// Package service implements the video workflows: loading and indexing
// a transcript, answering questions against it, and generating
// summaries, quizzes, clip suggestions and blog posts.
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/internal/embedding"
	"github.com/vidsage/vidsage/internal/indexer"
	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/internal/retrieval"
	"github.com/vidsage/vidsage/pkg/observability"
)

// transcript text fed into quiz and summary prompts is capped to keep
// prompts inside model limits.
const maxPromptSourceChars = 200000

// LoadResult describes the outcome of loading a video.
type LoadResult struct {
	VideoID string `json:"video_id"`
	Chunks  int    `json:"chunks"`
	Summary string `json:"summary,omitempty"`
	Warm    bool   `json:"warm"`
}

// Clip is one suggested moment in a video.
type Clip struct {
	Start float64 `json:"start"`
	Title string  `json:"title"`
}

// VideoService drives the per-video workflows. All derived artifacts
// (answers, summaries, quizzes) are cached content-addressed; the model
// is only consulted on a cold key.
type VideoService struct {
	indexes    *indexer.Store
	retriever  *retrieval.Retriever
	generator  embedding.Generator
	videoCache *cache.VideoCache
	breaker    *resilience.Breaker
	logger     observability.Logger
}

// NewVideoService creates a VideoService. The breaker guards model
// calls and may be nil.
func NewVideoService(indexes *indexer.Store, retriever *retrieval.Retriever, generator embedding.Generator, videoCache *cache.VideoCache, breaker *resilience.Breaker, logger observability.Logger) *VideoService {
	return &VideoService{
		indexes:    indexes,
		retriever:  retriever,
		generator:  generator,
		videoCache: videoCache,
		breaker:    breaker,
		logger:     logger.WithPrefix("video-service"),
	}
}

// Load ensures a video's index is built and returns it with a summary.
// A warm cache means no transcript fetch, no embedding and no summary
// generation happen here.
func (s *VideoService) Load(ctx context.Context, videoURL string) (*LoadResult, error) {
	warm := s.indexes.Warm(ctx, videoURL)

	idx, err := s.indexes.Get(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		VideoID: idx.VideoID,
		Chunks:  len(idx.Chunks),
		Warm:    warm,
	}

	if summary, ok := s.videoCache.GetSummary(ctx, videoURL); ok {
		result.Summary = summary
		return result, nil
	}

	summary, err := s.generate(ctx, buildSummaryPrompt(s.sourceText(idx)))
	if err != nil {
		// The index loaded fine; a summary failure should not fail the
		// whole load.
		s.logger.Warn("Summary generation failed", map[string]interface{}{
			"video_id": idx.VideoID,
			"error":    err.Error(),
		})
		return result, nil
	}

	s.videoCache.SetSummary(ctx, videoURL, summary)
	result.Summary = summary
	return result, nil
}

// Ask answers a question about a video using its most relevant chunks.
func (s *VideoService) Ask(ctx context.Context, videoURL, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question must not be empty")
	}

	if answer, ok := s.videoCache.GetAnswer(ctx, videoURL, question); ok {
		return answer, nil
	}

	idx, err := s.indexes.Get(ctx, videoURL)
	if err != nil {
		return "", err
	}

	chunks, err := s.retriever.TopK(ctx, idx, question, retrieval.DefaultTopK)
	if err != nil {
		return "", err
	}

	answer, err := s.generate(ctx, buildAnswerPrompt(chunks, question))
	if err != nil {
		return "", err
	}

	s.videoCache.SetAnswer(ctx, videoURL, question, answer)
	return answer, nil
}

// Quiz generates numQuestions multiple-choice questions for a video.
func (s *VideoService) Quiz(ctx context.Context, videoURL string, numQuestions int) ([]QuizQuestion, error) {
	if numQuestions <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", numQuestions)
	}

	var cached []QuizQuestion
	if s.videoCache.GetQuiz(ctx, videoURL, numQuestions, &cached) {
		return cached, nil
	}

	idx, err := s.indexes.Get(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, buildQuizPrompt(numQuestions, s.sourceText(idx)))
	if err != nil {
		return nil, err
	}

	questions := parseQuizText(raw)
	if len(questions) == 0 {
		return nil, fmt.Errorf("model produced no parseable questions")
	}

	s.videoCache.SetQuiz(ctx, videoURL, numQuestions, questions)
	return questions, nil
}

// Clips suggests up to numClips notable moments with their start times.
func (s *VideoService) Clips(ctx context.Context, videoURL string, numClips int) ([]Clip, error) {
	if numClips <= 0 {
		numClips = 3
	}

	idx, err := s.indexes.Get(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, chunk := range idx.Chunks {
		fmt.Fprintf(&sb, "[%.0fs] %s\n", chunk.Start, chunk.Text)
		if sb.Len() > maxPromptSourceChars {
			break
		}
	}

	raw, err := s.generate(ctx, buildClipsPrompt(numClips, sb.String()))
	if err != nil {
		return nil, err
	}

	clips := parseClips(raw, numClips)
	if len(clips) == 0 {
		return nil, fmt.Errorf("model produced no parseable clips")
	}
	return clips, nil
}

// BlogPost is a generated long-form article derived from a transcript.
type BlogPost struct {
	Style   string `json:"style"`
	Content string `json:"content"`
}

// Blog writes a long-form post in the requested style from the video's
// transcript. An empty style defaults to "blog".
func (s *VideoService) Blog(ctx context.Context, videoURL, style string) (*BlogPost, error) {
	style = strings.TrimSpace(style)
	if style == "" {
		style = "blog"
	}

	idx, err := s.indexes.Get(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	content, err := s.generate(ctx, buildBlogPrompt(style, s.sourceText(idx)))
	if err != nil {
		return nil, err
	}
	return &BlogPost{Style: style, Content: content}, nil
}

func (s *VideoService) sourceText(idx *indexer.VideoIndex) string {
	var sb strings.Builder
	for _, chunk := range idx.Chunks {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(chunk.Text)
		if sb.Len() > maxPromptSourceChars {
			break
		}
	}
	text := sb.String()
	if len(text) > maxPromptSourceChars {
		text = text[:maxPromptSourceChars]
	}
	return text
}

func (s *VideoService) generate(ctx context.Context, prompt string) (string, error) {
	if s.breaker == nil {
		return s.generator.Generate(ctx, prompt)
	}
	var out string
	err := s.breaker.Execute(func() error {
		var gerr error
		out, gerr = s.generator.Generate(ctx, prompt)
		return gerr
	})
	return out, err
}

// parseClips parses "<seconds>|<title>" lines, ignoring anything else.
func parseClips(raw string, limit int) []Clip {
	var clips []Clip
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		start, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(parts[0]), "s"), 64)
		if err != nil || start < 0 {
			continue
		}
		title := strings.TrimSpace(parts[1])
		if title == "" {
			continue
		}
		clips = append(clips, Clip{Start: start, Title: title})
	}

	sort.Slice(clips, func(i, j int) bool { return clips[i].Start < clips[j].Start })
	if len(clips) > limit {
		clips = clips[:limit]
	}
	return clips
}
