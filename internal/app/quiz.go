package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ks982579/sullivansoftware-dot-dev/internal/domain"
)

// quizDocumentSchema validates imported quiz documents before any IDs
// or orders are assigned.
const quizDocumentSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "multipleChoice": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 2},
          "correctAnswer": {"type": "integer", "minimum": 0}
        }
      }
    },
    "shortAnswer": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "answer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "answer": {"type": "string", "minLength": 1}
        }
      }
    },
    "longAnswer": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "rubric": {"type": "string"}
        }
      }
    }
  }
}`

var compiledQuizSchema = jsonschema.MustCompileString("quiz.schema.json", quizDocumentSchema)

// QuizDocument is the import/export wire form of a quiz. IDs and
// orders are internal; import assigns fresh ones.
type QuizDocument struct {
	Title          string          `json:"title"`
	MultipleChoice []MCQuestionDoc `json:"multipleChoice,omitempty"`
	ShortAnswer    []SAQuestionDoc `json:"shortAnswer,omitempty"`
	LongAnswer     []LAQuestionDoc `json:"longAnswer,omitempty"`
}

// MCQuestionDoc is the wire form of a multiple-choice question.
type MCQuestionDoc struct {
	Prompt  string   `json:"question"`
	Choices []string `json:"options"`
	Answer  int      `json:"correctAnswer"`
}

// SAQuestionDoc is the wire form of a short-answer question.
type SAQuestionDoc struct {
	Prompt string `json:"question"`
	Answer string `json:"answer"`
}

// LAQuestionDoc is the wire form of a long-answer question.
type LAQuestionDoc struct {
	Prompt string `json:"question"`
	Rubric string `json:"rubric,omitempty"`
}

// ListQuizzes lists quizzes by creation time.
func (s *Service) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.repo.LoadQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(quizzes, func(a, b domain.Quiz) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return quizzes, nil
}

// GetQuiz returns one quiz by ID.
func (s *Service) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	quizzes, err := s.repo.LoadQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, quiz := range quizzes {
		if quiz.ID == id {
			return quiz, nil
		}
	}
	return domain.Quiz{}, ErrNotFound
}

// CreateQuiz creates quiz.
func (s *Service) CreateQuiz(ctx context.Context, title string) (domain.Quiz, error) {
	quiz, err := domain.NewQuiz(s.idGen(), title, s.clock())
	if err != nil {
		return domain.Quiz{}, err
	}
	quizzes, err := s.repo.LoadQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	quizzes = append(quizzes, quiz)
	if err := s.repo.SaveQuizzes(ctx, quizzes); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// RenameQuiz retitles a quiz. Unknown IDs are a silent no-op.
func (s *Service) RenameQuiz(ctx context.Context, id, title string) error {
	return s.mutateQuiz(ctx, id, func(quiz *domain.Quiz) error {
		return quiz.Rename(title)
	})
}

// DeleteQuiz removes a quiz. Unknown IDs are a silent no-op.
func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	quizzes, err := s.repo.LoadQuizzes(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(quizzes, func(q domain.Quiz) bool { return q.ID == id })
	if idx < 0 {
		return nil
	}
	quizzes = slices.Delete(quizzes, idx, idx+1)
	return s.repo.SaveQuizzes(ctx, quizzes)
}

// AddMCQuestion appends a multiple-choice question to a quiz.
func (s *Service) AddMCQuestion(ctx context.Context, quizID, prompt string, choices []string, answer int) error {
	return s.mutateQuiz(ctx, quizID, func(quiz *domain.Quiz) error {
		question, err := domain.NewMCQuestion(s.idGen(), prompt, choices, answer, len(quiz.MultipleChoice))
		if err != nil {
			return err
		}
		quiz.MultipleChoice = append(quiz.MultipleChoice, question)
		return nil
	})
}

// AddSAQuestion appends a short-answer question to a quiz.
func (s *Service) AddSAQuestion(ctx context.Context, quizID, prompt, answer string) error {
	return s.mutateQuiz(ctx, quizID, func(quiz *domain.Quiz) error {
		question, err := domain.NewSAQuestion(s.idGen(), prompt, answer, len(quiz.ShortAnswer))
		if err != nil {
			return err
		}
		quiz.ShortAnswer = append(quiz.ShortAnswer, question)
		return nil
	})
}

// AddLAQuestion appends a long-answer question to a quiz.
func (s *Service) AddLAQuestion(ctx context.Context, quizID, prompt, rubric string) error {
	return s.mutateQuiz(ctx, quizID, func(quiz *domain.Quiz) error {
		question, err := domain.NewLAQuestion(s.idGen(), prompt, rubric, len(quiz.LongAnswer))
		if err != nil {
			return err
		}
		quiz.LongAnswer = append(quiz.LongAnswer, question)
		return nil
	})
}

// RemoveQuestion deletes a question from its group and closes the
// order gap. Unknown question IDs are a silent no-op.
func (s *Service) RemoveQuestion(ctx context.Context, quizID string, group domain.QuestionGroup, questionID string) error {
	return s.mutateQuiz(ctx, quizID, func(quiz *domain.Quiz) error {
		switch group {
		case domain.GroupMultipleChoice:
			quiz.MultipleChoice = removeAndReindex(quiz.MultipleChoice, questionID,
				func(q domain.MCQuestion) string { return q.ID },
				func(q domain.MCQuestion) int { return q.Order },
				func(q *domain.MCQuestion, order int) { q.Order = order })
		case domain.GroupShortAnswer:
			quiz.ShortAnswer = removeAndReindex(quiz.ShortAnswer, questionID,
				func(q domain.SAQuestion) string { return q.ID },
				func(q domain.SAQuestion) int { return q.Order },
				func(q *domain.SAQuestion, order int) { q.Order = order })
		case domain.GroupLongAnswer:
			quiz.LongAnswer = removeAndReindex(quiz.LongAnswer, questionID,
				func(q domain.LAQuestion) string { return q.ID },
				func(q domain.LAQuestion) int { return q.Order },
				func(q *domain.LAQuestion, order int) { q.Order = order })
		default:
			return domain.ErrInvalidKind
		}
		return nil
	})
}

// MoveDirection selects a one-slot question move.
type MoveDirection int

// MoveUp and MoveDown are the two supported question moves.
const (
	MoveUp MoveDirection = iota
	MoveDown
)

// MoveQuestion swaps a question with its neighbor in order. Moves past
// either edge are a silent no-op.
func (s *Service) MoveQuestion(ctx context.Context, quizID string, group domain.QuestionGroup, questionID string, dir MoveDirection) error {
	return s.mutateQuiz(ctx, quizID, func(quiz *domain.Quiz) error {
		switch group {
		case domain.GroupMultipleChoice:
			swapByOrder(quiz.MultipleChoice, questionID, dir,
				func(q domain.MCQuestion) string { return q.ID },
				func(q domain.MCQuestion) int { return q.Order },
				func(q *domain.MCQuestion, order int) { q.Order = order })
		case domain.GroupShortAnswer:
			swapByOrder(quiz.ShortAnswer, questionID, dir,
				func(q domain.SAQuestion) string { return q.ID },
				func(q domain.SAQuestion) int { return q.Order },
				func(q *domain.SAQuestion, order int) { q.Order = order })
		case domain.GroupLongAnswer:
			swapByOrder(quiz.LongAnswer, questionID, dir,
				func(q domain.LAQuestion) string { return q.ID },
				func(q domain.LAQuestion) int { return q.Order },
				func(q *domain.LAQuestion, order int) { q.Order = order })
		default:
			return domain.ErrInvalidKind
		}
		return nil
	})
}

// ExportQuiz renders a quiz as its canonical wire document.
func (s *Service) ExportQuiz(ctx context.Context, id string) (QuizDocument, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return QuizDocument{}, err
	}
	return documentFromQuiz(quiz), nil
}

// ImportQuiz validates a wire document and stores it as a new quiz
// with fresh IDs and dense orders.
func (s *Service) ImportQuiz(ctx context.Context, raw []byte) (domain.Quiz, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}
	if err := compiledQuizSchema.Validate(decoded); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}
	var doc QuizDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}

	quiz, err := domain.NewQuiz(s.idGen(), doc.Title, s.clock())
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: %v", ErrInvalidQuizDocument, err)
	}
	for i, q := range doc.MultipleChoice {
		question, err := domain.NewMCQuestion(s.idGen(), q.Prompt, q.Choices, q.Answer, i)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("%w: multipleChoice[%d]: %v", ErrInvalidQuizDocument, i, err)
		}
		quiz.MultipleChoice = append(quiz.MultipleChoice, question)
	}
	for i, q := range doc.ShortAnswer {
		question, err := domain.NewSAQuestion(s.idGen(), q.Prompt, q.Answer, i)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("%w: shortAnswer[%d]: %v", ErrInvalidQuizDocument, i, err)
		}
		quiz.ShortAnswer = append(quiz.ShortAnswer, question)
	}
	for i, q := range doc.LongAnswer {
		question, err := domain.NewLAQuestion(s.idGen(), q.Prompt, q.Rubric, i)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("%w: longAnswer[%d]: %v", ErrInvalidQuizDocument, i, err)
		}
		quiz.LongAnswer = append(quiz.LongAnswer, question)
	}

	quizzes, err := s.repo.LoadQuizzes(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	quizzes = append(quizzes, quiz)
	if err := s.repo.SaveQuizzes(ctx, quizzes); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ShuffleQuiz returns a copy of the quiz with each multiple-choice
// question's choices deterministically permuted and the answer index
// remapped. The stored quiz is untouched.
func (s *Service) ShuffleQuiz(ctx context.Context, id string, seed int64) (domain.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	rng := rand.New(rand.NewSource(seed))
	shuffled := make([]domain.MCQuestion, len(quiz.MultipleChoice))
	for i, question := range quiz.MultipleChoice {
		perm := rng.Perm(len(question.Choices))
		choices := make([]string, len(question.Choices))
		answer := question.Answer
		for dst, src := range perm {
			choices[dst] = question.Choices[src]
			if src == question.Answer {
				answer = dst
			}
		}
		question.Choices = choices
		question.Answer = answer
		shuffled[i] = question
	}
	quiz.MultipleChoice = shuffled
	return quiz, nil
}

// QuizAnswers carries a grading attempt keyed by question ID.
type QuizAnswers struct {
	MultipleChoice map[string]int
	ShortAnswer    map[string]string
}

// QuizScore summarizes a graded attempt. Long answers are never
// auto-graded and only contribute to Ungraded.
type QuizScore struct {
	Correct  int
	Graded   int
	Ungraded int
}

// GradeQuiz scores multiple-choice by index and short answers by
// case-insensitive exact match.
func (s *Service) GradeQuiz(ctx context.Context, id string, answers QuizAnswers) (QuizScore, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return QuizScore{}, err
	}
	var score QuizScore
	for _, question := range quiz.MultipleChoice {
		score.Graded++
		if given, ok := answers.MultipleChoice[question.ID]; ok && given == question.Answer {
			score.Correct++
		}
	}
	for _, question := range quiz.ShortAnswer {
		score.Graded++
		given, ok := answers.ShortAnswer[question.ID]
		if ok && strings.EqualFold(strings.TrimSpace(given), question.Answer) {
			score.Correct++
		}
	}
	score.Ungraded = len(quiz.LongAnswer)
	return score, nil
}

// mutateQuiz applies fn to one quiz by ID and persists the collection.
// A missing ID returns nil without touching the store.
func (s *Service) mutateQuiz(ctx context.Context, id string, fn func(*domain.Quiz) error) error {
	quizzes, err := s.repo.LoadQuizzes(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(quizzes, func(q domain.Quiz) bool { return q.ID == id })
	if idx < 0 {
		return nil
	}
	if err := fn(&quizzes[idx]); err != nil {
		return err
	}
	return s.repo.SaveQuizzes(ctx, quizzes)
}

// documentFromQuiz converts a stored quiz to its wire document, group
// orders ascending.
func documentFromQuiz(quiz domain.Quiz) QuizDocument {
	doc := QuizDocument{Title: quiz.Title}
	mc := append([]domain.MCQuestion(nil), quiz.MultipleChoice...)
	slices.SortStableFunc(mc, func(a, b domain.MCQuestion) int { return a.Order - b.Order })
	for _, q := range mc {
		doc.MultipleChoice = append(doc.MultipleChoice, MCQuestionDoc{
			Prompt:  q.Prompt,
			Choices: append([]string(nil), q.Choices...),
			Answer:  q.Answer,
		})
	}
	sa := append([]domain.SAQuestion(nil), quiz.ShortAnswer...)
	slices.SortStableFunc(sa, func(a, b domain.SAQuestion) int { return a.Order - b.Order })
	for _, q := range sa {
		doc.ShortAnswer = append(doc.ShortAnswer, SAQuestionDoc{Prompt: q.Prompt, Answer: q.Answer})
	}
	la := append([]domain.LAQuestion(nil), quiz.LongAnswer...)
	slices.SortStableFunc(la, func(a, b domain.LAQuestion) int { return a.Order - b.Order })
	for _, q := range la {
		doc.LongAnswer = append(doc.LongAnswer, LAQuestionDoc{Prompt: q.Prompt, Rubric: q.Rubric})
	}
	return doc
}

// removeAndReindex drops the question with the given ID and reassigns
// dense orders by current order.
func removeAndReindex[Q any](questions []Q, id string, idOf func(Q) string, orderOf func(Q) int, setOrder func(*Q, int)) []Q {
	kept := make([]Q, 0, len(questions))
	for _, q := range questions {
		if idOf(q) == id {
			continue
		}
		kept = append(kept, q)
	}
	slices.SortStableFunc(kept, func(a, b Q) int { return orderOf(a) - orderOf(b) })
	for i := range kept {
		setOrder(&kept[i], i)
	}
	return kept
}

// swapByOrder swaps the question with its neighbor in order; edge
// moves leave the group unchanged.
func swapByOrder[Q any](questions []Q, id string, dir MoveDirection, idOf func(Q) string, orderOf func(Q) int, setOrder func(*Q, int)) {
	idx := -1
	for i, q := range questions {
		if idOf(q) == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	target := orderOf(questions[idx]) - 1
	if dir == MoveDown {
		target = orderOf(questions[idx]) + 1
	}
	for i := range questions {
		if i != idx && orderOf(questions[i]) == target {
			setOrder(&questions[i], orderOf(questions[idx]))
			setOrder(&questions[idx], target)
			return
		}
	}
}
