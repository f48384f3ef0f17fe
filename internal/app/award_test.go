package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quizhub-service/internal/domain"
)

func TestXPReward(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		quizXP  int
		want    int
	}{
		{"perfect score pays full value", 5, 5, 100, 100},
		{"perfect score on zero questions", 0, 0, 100, 100},
		{"ninety percent pays eighty percent", 9, 10, 100, 80},
		{"seventy percent boundary", 7, 10, 100, 80},
		{"eighty percent floors fraction", 4, 5, 55, 44},
		{"high tier floors at ten", 7, 10, 10, 10},
		{"sixty percent pays half", 6, 10, 50, 25},
		{"fifty percent boundary", 5, 10, 100, 50},
		{"half tier floors at ten", 5, 10, 15, 10},
		{"below half pays flat ten", 4, 10, 100, 10},
		{"zero correct pays flat ten", 0, 5, 1000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, XPReward(tt.correct, tt.total, tt.quizXP))
		})
	}
}

func TestNextStreak(t *testing.T) {
	today := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	record := func(streak int, last time.Time) *domain.StreakRecord {
		return &domain.StreakRecord{UserID: "u1", CurrentStreak: streak, LastCompleted: last}
	}

	t.Run("first completion starts at one", func(t *testing.T) {
		assert.Equal(t, 1, NextStreak(nil, today))
	})

	t.Run("next day increments", func(t *testing.T) {
		assert.Equal(t, 4, NextStreak(record(3, today.AddDate(0, 0, -1)), today))
	})

	t.Run("gap resets to one", func(t *testing.T) {
		assert.Equal(t, 1, NextStreak(record(7, today.AddDate(0, 0, -2)), today))
	})

	t.Run("same day unchanged", func(t *testing.T) {
		assert.Equal(t, 5, NextStreak(record(5, today.Add(-2*time.Hour)), today))
	})

	t.Run("crossing midnight counts as one day", func(t *testing.T) {
		last := time.Date(2025, 3, 9, 23, 50, 0, 0, time.UTC)
		now := time.Date(2025, 3, 10, 0, 10, 0, 0, time.UTC)
		assert.Equal(t, 3, NextStreak(record(2, last), now))
	})
}
