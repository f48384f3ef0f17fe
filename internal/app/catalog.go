package app

import (
	"context"
	"fmt"

	"quizhub-service/internal/domain"
)

// Catalog lists quizzes for the subject/difficulty picker.
type Catalog struct {
	quizzes QuizCatalogRepository
}

func NewCatalog(quizzes QuizCatalogRepository) *Catalog {
	return &Catalog{quizzes: quizzes}
}

func (c *Catalog) ByCategory(ctx context.Context, category string) ([]domain.Quiz, error) {
	quizzes, err := c.quizzes.ByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%w: list quizzes for %s: %v", domain.ErrDataUnavailable, category, err)
	}
	return quizzes, nil
}
