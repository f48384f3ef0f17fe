package domain

import "time"

// Identity is what the external identity gateway knows about a signed-in user.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// User is the record-store row bridged from a gateway identity.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quiz is catalog metadata; read-only to the application.
type Quiz struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XPValue     int    `json:"xpValue"`
	Icon        string `json:"icon"`
}

// Question is a four-option MCQ belonging to a quiz.
type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quizId"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"-"`
}

// ProgressRecord is one completed quiz attempt; rows are inserted, never updated.
type ProgressRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	QuizID      string    `json:"quizId"`
	Score       int       `json:"score"`
	XPEarned    int       `json:"xpEarned"`
	CompletedAt time.Time `json:"completedAt"`
}

// AttemptRecord mirrors the legacy user_attempts table. AttemptNumber is
// always 1; repeated plays do not increment it.
type AttemptRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	QuizID        string    `json:"quizId"`
	AttemptNumber int       `json:"attemptNumber"`
	AttemptedAt   time.Time `json:"attemptedAt"`
	Score         int       `json:"score"`
}

// LeaderboardEntry holds a user's cumulative XP; exactly one row per user.
type LeaderboardEntry struct {
	UserID  string `json:"userId"`
	TotalXP int    `json:"totalXP"`
}

// RankedEntry is a leaderboard row resolved for display.
type RankedEntry struct {
	UserID        string `json:"userId"`
	Rank          int    `json:"rank"`
	Username      string `json:"username"`
	TotalXP       int    `json:"totalXP"`
	IsCurrentUser bool   `json:"isCurrentUser"`
}

// StreakRecord tracks consecutive calendar days with a completed quiz.
// LastCompleted carries a date only; the time part is always midnight UTC.
type StreakRecord struct {
	UserID        string    `json:"userId"`
	CurrentStreak int       `json:"currentStreak"`
	LastCompleted time.Time `json:"lastCompleted"`
}

// QuizContent is what the session engine loads: the quiz's nominal XP value
// plus its question set.
type QuizContent struct {
	QuizID    string     `json:"quizId"`
	XPValue   int        `json:"xpValue"`
	Questions []Question `json:"questions"`
}

// CompletionResult is exposed to the caller once a session reaches Completed.
type CompletionResult struct {
	Correct        int     `json:"correct"`
	TotalQuestions int     `json:"totalQuestions"`
	ScorePercent   float64 `json:"scorePercent"`
	XPEarned       int     `json:"xpEarned"`
}
