package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quizhub-service/internal/domain"
)

// QuizRepository serves quiz metadata and content from the quizzes and
// questions tables. Both are read-only to the application.
type QuizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// GetContent fetches the quiz's XP value and its question set in two reads,
// the same shape the session engine loads on entry.
func (r *QuizRepository) GetContent(ctx context.Context, quizID string) (domain.QuizContent, error) {
	quiz := new(quizRow)
	err := r.db.NewSelect().Model(quiz).Column("xp_value").Where("id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizContent{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizContent{}, fmt.Errorf("select quiz xp: %w", err)
	}

	var rows []questionRow
	if err := r.db.NewSelect().Model(&rows).Where("quiz_id = ?", quizID).Order("id ASC").Scan(ctx); err != nil {
		return domain.QuizContent{}, fmt.Errorf("select questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, domain.Question{
			ID:            row.ID,
			QuizID:        row.QuizID,
			Text:          row.QuestionText,
			Options:       []string{row.Option1, row.Option2, row.Option3, row.Option4},
			CorrectAnswer: row.CorrectAnswer,
		})
	}
	return domain.QuizContent{QuizID: quizID, XPValue: quiz.XPValue, Questions: questions}, nil
}

func (r *QuizRepository) ByCategory(ctx context.Context, category string) ([]domain.Quiz, error) {
	var rows []quizRow
	err := r.db.NewSelect().Model(&rows).Where("category = ?", category).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, row := range rows {
		quizzes = append(quizzes, domain.Quiz{
			ID:          row.ID,
			Category:    row.Category,
			Difficulty:  row.Difficulty,
			Title:       row.Title,
			Description: row.Description,
			XPValue:     row.XPValue,
			Icon:        row.Icon,
		})
	}
	return quizzes, nil
}
