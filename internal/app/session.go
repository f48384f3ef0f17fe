package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"quizhub-service/internal/domain"
)

// SessionState is the lifecycle phase of a quiz session. Transitions only run
// forward: Loading -> Answering -> Completed.
type SessionState int

const (
	StateLoading SessionState = iota
	StateAnswering
	StateCompleted
)

// Session is the in-progress attempt. It is a plain value: every transition
// on Engine takes a Session and returns the next one, so no ambient mutable
// state survives a navigation away.
type Session struct {
	State      SessionState
	UserID     string
	Content    domain.QuizContent
	Selections []string
	Current    int
}

// Progress reports the completion percentage shown alongside the question.
func (s Session) Progress() float64 {
	total := len(s.Content.Questions)
	if total == 0 {
		return 0
	}
	return float64(s.Current+1) / float64(total) * 100
}

// CurrentQuestion returns the question at the session cursor.
func (s Session) CurrentQuestion() domain.Question {
	return s.Content.Questions[s.Current]
}

// Stores groups the record-store repositories the engine writes through.
type Stores struct {
	Content     QuizContentRepository
	Progress    ProgressRepository
	Attempts    AttemptRepository
	Leaderboard LeaderboardRepository
	Streaks     StreakRepository
}

// Engine drives quiz sessions: loading content, tracking answers, and
// persisting the completion outcome.
type Engine struct {
	stores Stores
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func NewEngine(stores Stores) *Engine {
	return &Engine{
		stores: stores,
		logger: log.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// NewEngineWithClock is test-only for deterministic timestamps and ids.
func NewEngineWithClock(stores Stores, logger *log.Logger, now func() time.Time, newID func() string) *Engine {
	return &Engine{stores: stores, logger: logger, now: now, newID: newID}
}

// Load fetches the quiz content and opens a fresh Answering session with one
// empty selection slot per question.
func (e *Engine) Load(ctx context.Context, userID, quizID string) (Session, error) {
	content, err := e.stores.Content.GetContent(ctx, quizID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: load quiz %s: %v", domain.ErrDataUnavailable, quizID, err)
	}
	return Session{
		State:      StateAnswering,
		UserID:     userID,
		Content:    content,
		Selections: make([]string, len(content.Questions)),
	}, nil
}

// SelectOption records the option for the current question. Pure session
// mutation; the store is not touched.
func (e *Engine) SelectOption(s Session, option string) (Session, error) {
	if s.State != StateAnswering {
		return s, domain.ErrNotAnswering
	}
	selections := append([]string(nil), s.Selections...)
	selections[s.Current] = option
	s.Selections = selections
	return s, nil
}

// Advance moves to the next question. At the last question it is a no-op;
// callers finish with Complete instead.
func (e *Engine) Advance(s Session) (Session, error) {
	if s.State != StateAnswering {
		return s, domain.ErrNotAnswering
	}
	if s.Selections[s.Current] == "" {
		return s, domain.ErrNoSelection
	}
	if s.Current < len(s.Content.Questions)-1 {
		s.Current++
	}
	return s, nil
}

// Complete scores the session and persists the outcome. The persistence steps
// are independent and best effort: a failed write is logged and abandoned,
// and the remaining steps still run.
func (e *Engine) Complete(ctx context.Context, s Session) (Session, domain.CompletionResult, error) {
	if s.State != StateAnswering {
		return s, domain.CompletionResult{}, domain.ErrNotAnswering
	}
	if s.Selections[s.Current] == "" {
		return s, domain.CompletionResult{}, domain.ErrNoSelection
	}

	correct := 0
	for i, q := range s.Content.Questions {
		if s.Selections[i] == q.CorrectAnswer {
			correct++
		}
	}
	total := len(s.Content.Questions)
	xpEarned := XPReward(correct, total, s.Content.XPValue)
	now := e.now()

	if err := e.stores.Progress.Insert(ctx, domain.ProgressRecord{
		ID:          e.newID(),
		UserID:      s.UserID,
		QuizID:      s.Content.QuizID,
		Score:       correct,
		XPEarned:    xpEarned,
		CompletedAt: now,
	}); err != nil {
		e.logger.Printf("complete quiz %s: insert progress: %v", s.Content.QuizID, err)
	}

	e.addLeaderboardXP(ctx, s.UserID, xpEarned)

	if err := e.stores.Attempts.Insert(ctx, domain.AttemptRecord{
		ID:            e.newID(),
		UserID:        s.UserID,
		QuizID:        s.Content.QuizID,
		AttemptNumber: 1,
		AttemptedAt:   now,
		Score:         correct,
	}); err != nil {
		e.logger.Printf("complete quiz %s: insert attempt: %v", s.Content.QuizID, err)
	}

	e.advanceStreak(ctx, s.UserID, now)

	s.State = StateCompleted
	result := domain.CompletionResult{
		Correct:        correct,
		TotalQuestions: total,
		XPEarned:       xpEarned,
	}
	if total > 0 {
		result.ScorePercent = float64(correct) / float64(total) * 100
	}
	return s, result, nil
}

// addLeaderboardXP is the read-then-write from the completion workflow.
// Concurrent completions by the same user can lose an increment; the store
// offers no row lock and the gap is accepted.
func (e *Engine) addLeaderboardXP(ctx context.Context, userID string, xpEarned int) {
	current := 0
	entry, ok, err := e.stores.Leaderboard.GetEntry(ctx, userID)
	if err != nil {
		e.logger.Printf("leaderboard read for %s: %v", userID, err)
	} else if ok {
		current = entry.TotalXP
	}
	err = e.stores.Leaderboard.UpsertTotal(ctx, domain.LeaderboardEntry{
		UserID:  userID,
		TotalXP: current + xpEarned,
	})
	if err != nil {
		e.logger.Printf("leaderboard upsert for %s: %v", userID, err)
	}
}

func (e *Engine) advanceStreak(ctx context.Context, userID string, now time.Time) {
	rec, ok, err := e.stores.Streaks.Get(ctx, userID)
	if err != nil {
		e.logger.Printf("streak read for %s: %v", userID, err)
		return
	}
	var prev *domain.StreakRecord
	if ok {
		prev = &rec
	}
	next := domain.StreakRecord{
		UserID:        userID,
		CurrentStreak: NextStreak(prev, now),
		LastCompleted: dateOnly(now),
	}
	if err := e.stores.Streaks.Upsert(ctx, next); err != nil {
		e.logger.Printf("streak upsert for %s: %v", userID, err)
	}
}
