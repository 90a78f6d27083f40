package service

import (
	"fmt"
	"strings"

	"github.com/vidsage/vidsage/internal/retrieval"
)

const answerPromptTemplate = `You are a helpful assistant answering questions about a video using only its transcript.
If the transcript does not contain the answer, say you don't know.

Transcript:
%s

Question: %s
Answer:`

const summaryPromptTemplate = `You are a helpful assistant. Summarize the following video transcript in 3-5 sentences. Focus on the main topic, key points, and any important context. Do not reference the transcript directly or say 'this video'.

Transcript:
%s

Summary:`

const clipsPromptTemplate = `You are a video content assistant. From the timestamped transcript below, select the top %d most interesting or impactful moments for sharing. For each, output one line in exactly this format:

<start seconds>|<short title, 3-8 words>

Transcript:
%s`

const blogPromptTemplate = `You are a content creator assistant. Write a detailed, engaging, and well-structured %s post based on the following transcript. The output should be suitable for publishing as a blog post or video script, with clear sections, headings, and natural language. Do not reference the transcript directly.

Transcript:
%s

Begin your %s post below:`

func buildAnswerPrompt(chunks []retrieval.ScoredChunk, question string) string {
	parts := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		parts = append(parts, sc.Chunk.Text)
	}
	return fmt.Sprintf(answerPromptTemplate, strings.Join(parts, " "), question)
}

func buildSummaryPrompt(transcriptText string) string {
	return fmt.Sprintf(summaryPromptTemplate, transcriptText)
}

func buildClipsPrompt(numClips int, timestamped string) string {
	return fmt.Sprintf(clipsPromptTemplate, numClips, timestamped)
}

func buildBlogPrompt(style, transcriptText string) string {
	return fmt.Sprintf(blogPromptTemplate, style, transcriptText, style)
}
