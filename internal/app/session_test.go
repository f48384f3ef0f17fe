package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

type engineFixture struct {
	engine *app.Engine
	store  *memory.RecordStore
	now    time.Time
}

func newFixture(t *testing.T, questions, quizXP int) *engineFixture {
	t.Helper()
	f := &engineFixture{
		store: memory.NewRecordStore(),
		now:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	catalog := memory.NewStaticCatalog(
		[]domain.Quiz{{ID: "quiz-1", Category: "golang", XPValue: quizXP}},
		makeQuestions(questions),
	)
	seq := 0
	f.engine = app.NewEngineWithClock(
		app.Stores{
			Content:     catalog,
			Progress:    f.store.Progress(),
			Attempts:    f.store.Attempts(),
			Leaderboard: f.store,
			Streaks:     f.store,
		},
		log.New(io.Discard, "", 0),
		func() time.Time { return f.now },
		func() string { seq++; return fmt.Sprintf("id-%d", seq) },
	)
	return f
}

func makeQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			QuizID:        "quiz-1",
			Text:          fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
		})
	}
	return questions
}

// playThrough answers the whole quiz, getting the first `correct` questions
// right, and completes the session.
func playThrough(t *testing.T, f *engineFixture, correct int) domain.CompletionResult {
	t.Helper()
	ctx := context.Background()
	session, err := f.engine.Load(ctx, "user-1", "quiz-1")
	require.NoError(t, err)

	total := len(session.Content.Questions)
	for i := 0; i < total; i++ {
		option := "B"
		if i < correct {
			option = "A"
		}
		session, err = f.engine.SelectOption(session, option)
		require.NoError(t, err)
		if i < total-1 {
			session, err = f.engine.Advance(session)
			require.NoError(t, err)
		}
	}

	session, result, err := f.engine.Complete(ctx, session)
	require.NoError(t, err)
	require.Equal(t, app.StateCompleted, session.State)
	return result
}

func TestLoadInitializesAnsweringState(t *testing.T) {
	f := newFixture(t, 4, 100)

	session, err := f.engine.Load(context.Background(), "user-1", "quiz-1")
	require.NoError(t, err)

	assert.Equal(t, app.StateAnswering, session.State)
	assert.Len(t, session.Selections, 4)
	assert.Equal(t, 0, session.Current)
	assert.InDelta(t, 25.0, session.Progress(), 0.001)
}

func TestLoadUnknownQuizIsDataUnavailable(t *testing.T) {
	f := newFixture(t, 1, 100)

	_, err := f.engine.Load(context.Background(), "user-1", "no-such-quiz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestAdvanceRequiresSelection(t *testing.T) {
	f := newFixture(t, 2, 100)
	session, err := f.engine.Load(context.Background(), "user-1", "quiz-1")
	require.NoError(t, err)

	_, err = f.engine.Advance(session)
	assert.ErrorIs(t, err, domain.ErrNoSelection)

	session, err = f.engine.SelectOption(session, "A")
	require.NoError(t, err)
	session, err = f.engine.Advance(session)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Current)
	assert.InDelta(t, 100.0, session.Progress(), 0.001)

	// At the last question Advance is a no-op.
	session, err = f.engine.SelectOption(session, "A")
	require.NoError(t, err)
	session, err = f.engine.Advance(session)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Current)
}

func TestCompletePerfectScore(t *testing.T) {
	f := newFixture(t, 5, 100)
	ctx := context.Background()

	result := playThrough(t, f, 5)

	assert.Equal(t, 5, result.Correct)
	assert.Equal(t, 100, result.XPEarned)
	assert.InDelta(t, 100.0, result.ScorePercent, 0.001)

	progress := f.store.Progress().Records()
	require.Len(t, progress, 1)
	assert.Equal(t, 5, progress[0].Score)
	assert.Equal(t, 100, progress[0].XPEarned)

	entry, ok, err := f.store.GetEntry(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100, entry.TotalXP)

	attempts := f.store.Attempts().Records()
	require.Len(t, attempts, 1)
	assert.Equal(t, 1, attempts[0].AttemptNumber)

	streak, ok, err := f.store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestCompleteSixOfTenPaysHalf(t *testing.T) {
	f := newFixture(t, 10, 50)

	result := playThrough(t, f, 6)

	assert.Equal(t, 6, result.Correct)
	assert.Equal(t, 25, result.XPEarned)
	assert.InDelta(t, 60.0, result.ScorePercent, 0.001)
}

func TestRepeatCompletionsAccumulateXPButNotStreak(t *testing.T) {
	f := newFixture(t, 5, 100)
	ctx := context.Background()

	playThrough(t, f, 5)
	playThrough(t, f, 5)

	entry, ok, err := f.store.GetEntry(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 200, entry.TotalXP)

	// Same calendar day: streak untouched, attempt number still 1.
	streak, _, _ := f.store.Get(ctx, "user-1")
	assert.Equal(t, 1, streak.CurrentStreak)
	for _, attempt := range f.store.Attempts().Records() {
		assert.Equal(t, 1, attempt.AttemptNumber)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	f := newFixture(t, 2, 100)
	ctx := context.Background()

	playThrough(t, f, 2)
	f.now = f.now.AddDate(0, 0, 1)
	playThrough(t, f, 2)

	streak, _, _ := f.store.Get(ctx, "user-1")
	assert.Equal(t, 2, streak.CurrentStreak)

	f.now = f.now.AddDate(0, 0, 3)
	playThrough(t, f, 2)

	streak, _, _ = f.store.Get(ctx, "user-1")
	assert.Equal(t, 1, streak.CurrentStreak)
}

type failingProgress struct{}

func (failingProgress) Insert(context.Context, domain.ProgressRecord) error {
	return errors.New("store down")
}

func TestCompleteContinuesPastWriteFailure(t *testing.T) {
	f := newFixture(t, 2, 100)
	ctx := context.Background()

	catalog := memory.NewStaticCatalog(
		[]domain.Quiz{{ID: "quiz-1", Category: "golang", XPValue: 100}},
		makeQuestions(2),
	)
	engine := app.NewEngineWithClock(
		app.Stores{
			Content:     catalog,
			Progress:    failingProgress{},
			Attempts:    f.store.Attempts(),
			Leaderboard: f.store,
			Streaks:     f.store,
		},
		log.New(io.Discard, "", 0),
		func() time.Time { return f.now },
		func() string { return "id" },
	)

	session, err := engine.Load(ctx, "user-1", "quiz-1")
	require.NoError(t, err)
	session, _ = engine.SelectOption(session, "A")
	session, _ = engine.Advance(session)
	session, _ = engine.SelectOption(session, "A")

	_, result, err := engine.Complete(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 100, result.XPEarned)

	// The failed progress insert did not stop the later steps.
	entry, ok, _ := f.store.GetEntry(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, 100, entry.TotalXP)
	streak, ok, _ := f.store.Get(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, 1, streak.CurrentStreak)
}
