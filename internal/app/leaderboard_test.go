package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func seedLeaderboard(t *testing.T, store *memory.RecordStore, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("user-%d", i)
		require.NoError(t, store.Insert(ctx, domain.User{ID: id, Username: fmt.Sprintf("Player %d", i)}))
		require.NoError(t, store.UpsertTotal(ctx, domain.LeaderboardEntry{UserID: id, TotalXP: i * 10}))
	}
}

func TestRefreshResolvesNamesAndRanks(t *testing.T) {
	store := memory.NewRecordStore()
	seedLeaderboard(t, store, 3)

	viewer := app.NewViewer(store, store, nil, "user-3", time.Minute)
	require.NoError(t, viewer.Refresh(context.Background(), true))

	snap := viewer.Snapshot()
	require.Len(t, snap.Current, 3)
	assert.Equal(t, "user-3", snap.Current[0].UserID)
	assert.Equal(t, 1, snap.Current[0].Rank)
	assert.Equal(t, "Player 3", snap.Current[0].Username)
	assert.True(t, snap.Current[0].IsCurrentUser)
	assert.Nil(t, snap.SelfRank)
	assert.False(t, snap.Loading)
}

func TestRefreshFallsBackToAnonymous(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.UpsertTotal(ctx, domain.LeaderboardEntry{UserID: "ghost", TotalXP: 50}))

	viewer := app.NewViewer(store, store, nil, "", time.Minute)
	require.NoError(t, viewer.Refresh(ctx, false))

	snap := viewer.Snapshot()
	require.Len(t, snap.Current, 1)
	assert.Equal(t, "Anonymous User", snap.Current[0].Username)
}

func TestRefreshLocatesSelfOutsideTopTen(t *testing.T) {
	store := memory.NewRecordStore()
	seedLeaderboard(t, store, 12)

	// user-1 has the lowest XP and sits at rank 12, outside the top ten.
	viewer := app.NewViewer(store, store, nil, "user-1", time.Minute)
	require.NoError(t, viewer.Refresh(context.Background(), false))

	snap := viewer.Snapshot()
	require.Len(t, snap.Current, 10)
	require.NotNil(t, snap.SelfRank)
	assert.Equal(t, 12, snap.SelfRank.Rank)
	assert.Equal(t, 10, snap.SelfRank.TotalXP)
}

func TestRefreshIncludesPreviousPeriod(t *testing.T) {
	store := memory.NewRecordStore()
	seedLeaderboard(t, store, 2)
	store.SetPrevious(map[string]int{"user-1": 500, "user-2": 300})

	viewer := app.NewViewer(store, store, nil, "", time.Minute)
	require.NoError(t, viewer.Refresh(context.Background(), false))

	snap := viewer.Snapshot()
	require.Len(t, snap.Previous, 2)
	assert.Equal(t, "user-1", snap.Previous[0].UserID)
	assert.Equal(t, 500, snap.Previous[0].TotalXP)
}

func TestChangeFeedTriggersRefresh(t *testing.T) {
	store := memory.NewRecordStore()
	seedLeaderboard(t, store, 1)

	viewer := app.NewViewer(store, store, store, "user-1", time.Hour)
	defer viewer.Close()
	require.NoError(t, viewer.Start(context.Background()))

	updates, cancel := viewer.Subscribe()
	defer cancel()
	<-updates // initial snapshot

	require.NoError(t, store.UpsertTotal(context.Background(), domain.LeaderboardEntry{UserID: "user-1", TotalXP: 999}))

	select {
	case snap := <-updates:
		require.Len(t, snap.Current, 1)
		assert.Equal(t, 999, snap.Current[0].TotalXP)
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh after leaderboard change")
	}
}

func TestAutoRefreshTicker(t *testing.T) {
	store := memory.NewRecordStore()
	seedLeaderboard(t, store, 1)

	viewer := app.NewViewer(store, store, nil, "", 20*time.Millisecond)
	defer viewer.Close()
	require.NoError(t, viewer.Start(context.Background()))

	updates, cancel := viewer.Subscribe()
	defer cancel()
	<-updates

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("auto refresh never fired")
	}

	// Toggling off stops the timer; toggling twice is a no-op either way.
	viewer.SetAutoRefresh(false)
	viewer.SetAutoRefresh(false)
	viewer.SetAutoRefresh(true)
}

func TestCloseTearsDownSubscribers(t *testing.T) {
	store := memory.NewRecordStore()
	viewer := app.NewViewer(store, store, store, "", time.Minute)
	require.NoError(t, viewer.Start(context.Background()))

	updates, _ := viewer.Subscribe()
	<-updates

	viewer.Close()
	if _, ok := <-updates; ok {
		t.Fatal("expected subscriber channel closed")
	}
}
