package cache

import (
	"context"
	"time"

	"github.com/vidsage/vidsage/pkg/observability"
)

// VideoCache is a typed facade over the expiring cache for per-video
// artifacts. Cache failures are absorbed and logged: a broken cache
// degrades to a miss on reads and a no-op on writes, it never fails the
// request in flight.
type VideoCache struct {
	cache  Cache
	ttl    TTLConfig
	logger observability.Logger
}

// NewVideoCache creates a VideoCache with the given per-kind TTLs.
func NewVideoCache(c Cache, ttl TTLConfig, logger observability.Logger) *VideoCache {
	return &VideoCache{
		cache:  c,
		ttl:    ttl,
		logger: logger.WithPrefix("video-cache"),
	}
}

func (v *VideoCache) get(ctx context.Context, key string, dest interface{}) bool {
	err := v.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if err != ErrNotFound {
		v.logger.Warn("Cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return false
}

func (v *VideoCache) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := v.cache.Set(ctx, key, value, ttl); err != nil {
		v.logger.Warn("Cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// GetAnswer returns a cached answer for a question about a video.
func (v *VideoCache) GetAnswer(ctx context.Context, videoURL, question string) (string, bool) {
	var answer string
	ok := v.get(ctx, QAKey(videoURL, question), &answer)
	return answer, ok
}

// SetAnswer caches an answer for a question about a video.
func (v *VideoCache) SetAnswer(ctx context.Context, videoURL, question, answer string) {
	v.store(ctx, QAKey(videoURL, question), answer, v.ttl.QA)
}

// GetSummary returns a cached video summary.
func (v *VideoCache) GetSummary(ctx context.Context, videoURL string) (string, bool) {
	var summary string
	ok := v.get(ctx, SummaryKey(videoURL), &summary)
	return summary, ok
}

// SetSummary caches a video summary.
func (v *VideoCache) SetSummary(ctx context.Context, videoURL, summary string) {
	v.store(ctx, SummaryKey(videoURL), summary, v.ttl.Summary)
}

// GetQuiz unmarshals a cached quiz into dest.
func (v *VideoCache) GetQuiz(ctx context.Context, videoURL string, numQuestions int, dest interface{}) bool {
	return v.get(ctx, MCQKey(videoURL, numQuestions), dest)
}

// SetQuiz caches a generated quiz.
func (v *VideoCache) SetQuiz(ctx context.Context, videoURL string, numQuestions int, quiz interface{}) {
	v.store(ctx, MCQKey(videoURL, numQuestions), quiz, v.ttl.MCQ)
}

// GetIndexSnapshot unmarshals a cached index snapshot into dest.
func (v *VideoCache) GetIndexSnapshot(ctx context.Context, videoURL string, dest interface{}) bool {
	return v.get(ctx, TranscriptKey(videoURL), dest)
}

// SetIndexSnapshot caches a serialized index snapshot.
func (v *VideoCache) SetIndexSnapshot(ctx context.Context, videoURL string, snapshot interface{}) {
	v.store(ctx, TranscriptKey(videoURL), snapshot, v.ttl.Index)
}

// HasIndexSnapshot reports whether a live snapshot exists for the video.
func (v *VideoCache) HasIndexSnapshot(ctx context.Context, videoURL string) bool {
	ok, err := v.cache.Exists(ctx, TranscriptKey(videoURL))
	if err != nil {
		v.logger.Warn("Cache existence check failed", map[string]interface{}{
			"key":   TranscriptKey(videoURL),
			"error": err.Error(),
		})
		return false
	}
	return ok
}
