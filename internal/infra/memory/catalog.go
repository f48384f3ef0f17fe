package memory

import (
	"context"
	"sort"

	"quizhub-service/internal/domain"
)

// StaticCatalog serves quiz metadata and content from an in-memory seed
// (useful for tests and database-free demos).
type StaticCatalog struct {
	quizzes   map[string]domain.Quiz
	questions map[string][]domain.Question
}

func NewStaticCatalog(quizzes []domain.Quiz, questions []domain.Question) *StaticCatalog {
	c := &StaticCatalog{
		quizzes:   make(map[string]domain.Quiz, len(quizzes)),
		questions: make(map[string][]domain.Question),
	}
	for _, q := range quizzes {
		c.quizzes[q.ID] = q
	}
	for _, q := range questions {
		c.questions[q.QuizID] = append(c.questions[q.QuizID], q)
	}
	return c
}

func (c *StaticCatalog) GetContent(_ context.Context, quizID string) (domain.QuizContent, error) {
	quiz, ok := c.quizzes[quizID]
	if !ok {
		return domain.QuizContent{}, domain.ErrQuizNotFound
	}
	return domain.QuizContent{
		QuizID:    quizID,
		XPValue:   quiz.XPValue,
		Questions: append([]domain.Question(nil), c.questions[quizID]...),
	}, nil
}

func (c *StaticCatalog) ByCategory(_ context.Context, category string) ([]domain.Quiz, error) {
	var out []domain.Quiz
	for _, q := range c.quizzes {
		if q.Category == category {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
