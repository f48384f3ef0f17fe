package postgres

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Row types live here, not in domain: loosely-typed store payloads are
// converted into the fixed domain shapes at this boundary and never cross it.

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk"`
	Username  string    `bun:"username"`
	Email     string    `bun:"email"`
	CreatedAt time.Time `bun:"created_at"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID          string `bun:"id,pk"`
	Category    string `bun:"category"`
	Difficulty  string `bun:"difficulty"`
	Title       string `bun:"title"`
	Description string `bun:"description"`
	XPValue     int    `bun:"xp_value"`
	Icon        string `bun:"icon"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string `bun:"id,pk"`
	QuizID        string `bun:"quiz_id"`
	QuestionText  string `bun:"question_text"`
	Option1       string `bun:"option1"`
	Option2       string `bun:"option2"`
	Option3       string `bun:"option3"`
	Option4       string `bun:"option4"`
	CorrectAnswer string `bun:"correct_answer"`
}

type progressRow struct {
	bun.BaseModel `bun:"table:user_progress"`

	ID          string    `bun:"id,pk"`
	UserID      string    `bun:"user_id"`
	QuizID      string    `bun:"quiz_id"`
	Score       int       `bun:"score"`
	XPEarned    int       `bun:"xp_earned"`
	CompletedAt time.Time `bun:"completed_at"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:user_attempts"`

	ID            string    `bun:"id,pk"`
	UserID        string    `bun:"user_id"`
	QuizID        string    `bun:"quiz_id"`
	AttemptNumber int       `bun:"attempt_number"`
	AttemptedAt   time.Time `bun:"attempted_at"`
	Score         int       `bun:"score"`
}

type leaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard"`

	UserID  string `bun:"user_id,pk"`
	TotalXP int    `bun:"total_xp"`
}

type previousLeaderboardRow struct {
	bun.BaseModel `bun:"table:previous_leaderboard"`

	UserID  string `bun:"user_id,pk"`
	TotalXP int    `bun:"total_xp"`
}

type streakRow struct {
	bun.BaseModel `bun:"table:streaks"`

	UserID        string    `bun:"user_id,pk"`
	CurrentStreak int       `bun:"current_streak"`
	LastCompleted time.Time `bun:"last_completed"`
}
