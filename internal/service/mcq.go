package service

import (
	"fmt"
	"strings"
)

// QuizQuestion is one parsed multiple-choice question.
type QuizQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
}

const mcqTemplate = `You are an assessment designer. Create %d multiple-choice questions from the text.

Requirements:
- 4 options (A-D) with exactly one correct answer.
- Mix difficulty levels.
- Questions must be self-contained.

Output format:
## MCQ
Question: <question>
A) <option A>
B) <option B>
C) <option C>
D) <option D>
Correct Answer: <A|B|C|D>

Source:
%s`

func buildQuizPrompt(numQuestions int, sourceText string) string {
	return fmt.Sprintf(mcqTemplate, numQuestions, sourceText)
}

// parseQuizText parses model output in the MCQ template format.
// Malformed blocks are skipped rather than failing the whole quiz.
func parseQuizText(text string) []QuizQuestion {
	var questions []QuizQuestion

	for _, block := range strings.Split(text, "## MCQ") {
		q, ok := parseQuizBlock(block)
		if ok {
			questions = append(questions, q)
		}
	}
	return questions
}

func parseQuizBlock(block string) (QuizQuestion, bool) {
	q := QuizQuestion{Options: make(map[string]string)}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Question:"):
			q.Question = strings.TrimSpace(strings.TrimPrefix(line, "Question:"))
		case len(line) > 2 && line[1] == ')' && line[0] >= 'A' && line[0] <= 'D':
			q.Options[string(line[0])] = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "Correct Answer:"):
			answer := strings.TrimSpace(strings.TrimPrefix(line, "Correct Answer:"))
			if len(answer) > 0 {
				q.CorrectAnswer = strings.ToUpper(answer[:1])
			}
		}
	}

	if q.Question == "" || len(q.Options) != 4 {
		return QuizQuestion{}, false
	}
	if _, ok := q.Options[q.CorrectAnswer]; !ok {
		return QuizQuestion{}, false
	}
	return q, true
}
