package app

import (
	"context"

	"quizhub-service/internal/domain"
)

// QuizContentRepository loads a quiz's XP value and question set
// (from cache/backing store).
type QuizContentRepository interface {
	GetContent(ctx context.Context, quizID string) (domain.QuizContent, error)
}

// QuizCatalogRepository lists quiz metadata for browsing.
type QuizCatalogRepository interface {
	ByCategory(ctx context.Context, category string) ([]domain.Quiz, error)
}

// UserRepository abstracts the users table.
type UserRepository interface {
	// GetByID returns domain.ErrUserNotFound when no row exists.
	GetByID(ctx context.Context, id string) (domain.User, error)
	Insert(ctx context.Context, user domain.User) error
	// GetByIDs is the batched lookup used for leaderboard name resolution;
	// missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

// ProgressRepository records completed attempts. Insert-only.
type ProgressRepository interface {
	Insert(ctx context.Context, rec domain.ProgressRecord) error
}

// AttemptRepository mirrors the legacy user_attempts table. Insert-only.
type AttemptRepository interface {
	Insert(ctx context.Context, rec domain.AttemptRecord) error
}

// LeaderboardRepository abstracts the leaderboard and previous_leaderboard
// tables. UpsertTotal takes the absolute total, keyed by user id, so retrying
// the same (user, total) pair is idempotent.
type LeaderboardRepository interface {
	GetEntry(ctx context.Context, userID string) (domain.LeaderboardEntry, bool, error)
	UpsertTotal(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	// All returns every entry ordered by XP descending; used to locate a
	// user's rank outside the top N.
	All(ctx context.Context) ([]domain.LeaderboardEntry, error)
	PreviousTop(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// StreakRepository abstracts the streaks table; one row per user.
type StreakRepository interface {
	Get(ctx context.Context, userID string) (domain.StreakRecord, bool, error)
	Upsert(ctx context.Context, rec domain.StreakRecord) error
}

// ChangeFeed delivers table-level change notifications. Events carry no
// payload; consumers re-read whatever they need.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string) (<-chan struct{}, func(), error)
}

// LocalStore is the small per-deployment key-value store backing the cached
// identity blob and the theme preference.
type LocalStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
