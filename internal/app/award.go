package app

import (
	"time"

	"quizhub-service/internal/domain"
)

const minXPReward = 10

// XPReward maps a score onto the quiz's nominal XP value.
// A perfect score pays the full value; >=70% pays 80% of it, >=50% pays half,
// both floored at 10; anything below 50% pays a flat 10.
func XPReward(correct, total, quizXP int) int {
	if correct == total {
		return quizXP
	}
	if 10*correct >= 7*total {
		return atLeast(quizXP*8/10, minXPReward)
	}
	if 2*correct >= total {
		return atLeast(quizXP/2, minXPReward)
	}
	return minXPReward
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

// NextStreak applies the calendar-day continuation rule. A completion the day
// after the last one extends the streak, a gap of more than one day resets it,
// and a repeat on the same day leaves it untouched. prev == nil means the
// user has never completed a quiz.
func NextStreak(prev *domain.StreakRecord, today time.Time) int {
	if prev == nil {
		return 1
	}
	switch days := daysBetween(prev.LastCompleted, today); {
	case days == 1:
		return prev.CurrentStreak + 1
	case days > 1:
		return 1
	default:
		return prev.CurrentStreak
	}
}

// daysBetween counts whole calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// dateOnly truncates t to midnight UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
