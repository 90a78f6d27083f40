package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashContent derives a deterministic 128-bit hex digest from content.
// The same input always yields the same digest, across processes and
// restarts, so cache keys are content-addressed rather than tied to any
// session or instance identity.
func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:32]
}

// TranscriptKey is the cache key for a video's serialized index snapshot.
func TranscriptKey(videoURL string) string {
	return fmt.Sprintf("video:%s:transcript", hashContent(videoURL))
}

// SummaryKey is the cache key for a video's generated summary.
func SummaryKey(videoURL string) string {
	return fmt.Sprintf("video:%s:summary", hashContent(videoURL))
}

// QAKey is the cache key for the answer to a question about a video.
// Both the video URL and the question text are content-hashed.
func QAKey(videoURL, question string) string {
	return fmt.Sprintf("video:%s:qa:%s", hashContent(videoURL), hashContent(question))
}

// MCQKey is the cache key for a generated quiz with numQuestions items.
func MCQKey(videoURL string, numQuestions int) string {
	return fmt.Sprintf("video:%s:mcq:%d", hashContent(videoURL), numQuestions)
}

// SessionsKey is the cache key for a user's chat session list.
func SessionsKey(userID string) string {
	return fmt.Sprintf("chat_sessions:%s", userID)
}

// MessagesKey is the cache key for a session's message list.
func MessagesKey(sessionID string) string {
	return fmt.Sprintf("chat_messages:%s", sessionID)
}
