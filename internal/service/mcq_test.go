package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedQuiz = `## MCQ
Question: What do goroutines communicate through?
A) Shared memory
B) Channels
C) Global variables
D) Files
Correct Answer: B

## MCQ
Question: Which statement waits on multiple channels?
A) for
B) switch
C) select
D) go
Correct Answer: C
`

func TestParseQuizText(t *testing.T) {
	t.Run("parses well-formed output", func(t *testing.T) {
		questions := parseQuizText(wellFormedQuiz)
		require.Len(t, questions, 2)

		assert.Equal(t, "What do goroutines communicate through?", questions[0].Question)
		assert.Equal(t, "Channels", questions[0].Options["B"])
		assert.Equal(t, "B", questions[0].CorrectAnswer)
		assert.Len(t, questions[0].Options, 4)

		assert.Equal(t, "C", questions[1].CorrectAnswer)
	})

	t.Run("skips block missing options", func(t *testing.T) {
		text := `## MCQ
Question: Incomplete?
A) Only one option
Correct Answer: A

## MCQ
Question: Complete?
A) a
B) b
C) c
D) d
Correct Answer: D
`
		questions := parseQuizText(text)
		require.Len(t, questions, 1)
		assert.Equal(t, "Complete?", questions[0].Question)
	})

	t.Run("skips block whose answer is not an option", func(t *testing.T) {
		text := `## MCQ
Question: Bad answer?
A) a
B) b
C) c
D) d
Correct Answer: E
`
		assert.Empty(t, parseQuizText(text))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, parseQuizText(""))
		assert.Empty(t, parseQuizText("no mcq markers here"))
	})

	t.Run("tolerates surrounding prose", func(t *testing.T) {
		text := "Here are your questions:\n\n" + wellFormedQuiz + "\nGood luck!"
		assert.Len(t, parseQuizText(text), 2)
	})
}

func TestParseClips(t *testing.T) {
	t.Run("parses and sorts by start", func(t *testing.T) {
		raw := `90|Second highlight
12|Opening hook
300s|Big reveal`

		clips := parseClips(raw, 5)
		require.Len(t, clips, 3)
		assert.Equal(t, 12.0, clips[0].Start)
		assert.Equal(t, "Opening hook", clips[0].Title)
		assert.Equal(t, 300.0, clips[2].Start)
	})

	t.Run("ignores malformed lines and respects limit", func(t *testing.T) {
		raw := `not a clip line
10|One
abc|Bad start
20|Two
30|Three`

		clips := parseClips(raw, 2)
		require.Len(t, clips, 2)
		assert.Equal(t, "One", clips[0].Title)
		assert.Equal(t, "Two", clips[1].Title)
	})
}
