package domain

import (
	"strings"
	"time"
)

// QuestionGroup identifies one of a quiz's three question lists.
type QuestionGroup string

const (
	GroupMultipleChoice QuestionGroup = "multiplechoice"
	GroupShortAnswer    QuestionGroup = "shortanswer"
	GroupLongAnswer     QuestionGroup = "longanswer"
)

// Quiz holds three independently ordered question groups. Order is
// dense and zero-based within each group.
type Quiz struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	CreatedAt      time.Time    `json:"createdAt"`
	MultipleChoice []MCQuestion `json:"multipleChoice"`
	ShortAnswer    []SAQuestion `json:"shortAnswer"`
	LongAnswer     []LAQuestion `json:"longAnswer"`
}

// MCQuestion is a multiple-choice question; Answer indexes Choices.
type MCQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question"`
	Choices []string `json:"options"`
	Answer  int      `json:"correctAnswer"`
	Order   int      `json:"order"`
}

// SAQuestion is a short-answer question graded by exact match.
type SAQuestion struct {
	ID     string `json:"id"`
	Prompt string `json:"question"`
	Answer string `json:"answer"`
	Order  int    `json:"order"`
}

// LAQuestion is a long-answer question; the rubric is for the grader,
// not for automatic scoring.
type LAQuestion struct {
	ID     string `json:"id"`
	Prompt string `json:"question"`
	Rubric string `json:"rubric"`
	Order  int    `json:"order"`
}

// NewQuiz constructs a new value for this package.
func NewQuiz(id, title string, now time.Time) (Quiz, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Quiz{}, ErrInvalidID
	}
	if title == "" {
		return Quiz{}, ErrInvalidTitle
	}
	return Quiz{
		ID:             id,
		Title:          title,
		CreatedAt:      now.UTC(),
		MultipleChoice: []MCQuestion{},
		ShortAnswer:    []SAQuestion{},
		LongAnswer:     []LAQuestion{},
	}, nil
}

// Rename renames the requested operation.
func (q *Quiz) Rename(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	q.Title = title
	return nil
}

// NewMCQuestion constructs a multiple-choice question.
func NewMCQuestion(id, prompt string, choices []string, answer, order int) (MCQuestion, error) {
	id = strings.TrimSpace(id)
	prompt = strings.TrimSpace(prompt)
	if id == "" {
		return MCQuestion{}, ErrInvalidID
	}
	if prompt == "" {
		return MCQuestion{}, ErrInvalidPrompt
	}
	trimmed := make([]string, 0, len(choices))
	for _, c := range choices {
		c = strings.TrimSpace(c)
		if c == "" {
			return MCQuestion{}, ErrInvalidChoices
		}
		trimmed = append(trimmed, c)
	}
	if len(trimmed) < 2 {
		return MCQuestion{}, ErrInvalidChoices
	}
	if answer < 0 || answer >= len(trimmed) {
		return MCQuestion{}, ErrInvalidAnswer
	}
	if order < 0 {
		return MCQuestion{}, ErrInvalidPosition
	}
	return MCQuestion{ID: id, Prompt: prompt, Choices: trimmed, Answer: answer, Order: order}, nil
}

// NewSAQuestion constructs a short-answer question.
func NewSAQuestion(id, prompt, answer string, order int) (SAQuestion, error) {
	id = strings.TrimSpace(id)
	prompt = strings.TrimSpace(prompt)
	answer = strings.TrimSpace(answer)
	if id == "" {
		return SAQuestion{}, ErrInvalidID
	}
	if prompt == "" {
		return SAQuestion{}, ErrInvalidPrompt
	}
	if answer == "" {
		return SAQuestion{}, ErrInvalidAnswer
	}
	if order < 0 {
		return SAQuestion{}, ErrInvalidPosition
	}
	return SAQuestion{ID: id, Prompt: prompt, Answer: answer, Order: order}, nil
}

// NewLAQuestion constructs a long-answer question.
func NewLAQuestion(id, prompt, rubric string, order int) (LAQuestion, error) {
	id = strings.TrimSpace(id)
	prompt = strings.TrimSpace(prompt)
	if id == "" {
		return LAQuestion{}, ErrInvalidID
	}
	if prompt == "" {
		return LAQuestion{}, ErrInvalidPrompt
	}
	if order < 0 {
		return LAQuestion{}, ErrInvalidPosition
	}
	return LAQuestion{ID: id, Prompt: prompt, Rubric: strings.TrimSpace(rubric), Order: order}, nil
}

// ParseQuestionGroup returns the QuestionGroup for a raw string.
func ParseQuestionGroup(raw string) (QuestionGroup, error) {
	switch QuestionGroup(strings.ToLower(strings.TrimSpace(raw))) {
	case GroupMultipleChoice:
		return GroupMultipleChoice, nil
	case GroupShortAnswer:
		return GroupShortAnswer, nil
	case GroupLongAnswer:
		return GroupLongAnswer, nil
	default:
		return "", ErrInvalidKind
	}
}
