package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quizhub-service/internal/domain"
)

const topSize = 10

const anonymousName = "Anonymous User"

// Snapshot is the leaderboard view state. Refreshes replace it wholesale;
// the last refresh to finish wins regardless of issue order.
type Snapshot struct {
	Current       []domain.RankedEntry `json:"current"`
	Previous      []domain.RankedEntry `json:"previous"`
	SelfRank      *domain.RankedEntry  `json:"selfRank,omitempty"`
	LastRefreshed time.Time            `json:"lastRefreshed"`
	Loading       bool                 `json:"loading"`
}

// Viewer keeps a leaderboard snapshot fresh through three triggers: explicit
// Refresh calls, change-feed events on the leaderboard table, and an optional
// fixed-interval ticker. Refreshes are not mutually excluded.
type Viewer struct {
	leaderboard LeaderboardRepository
	users       UserRepository
	feed        ChangeFeed
	selfID      string
	interval    time.Duration
	logger      *log.Logger
	now         func() time.Time

	mu          sync.Mutex
	snap        Snapshot
	subscribers map[chan Snapshot]struct{}
	stopTicker  chan struct{}
	cancelFeed  func()
	ctx         context.Context
	closed      bool
}

func NewViewer(leaderboard LeaderboardRepository, users UserRepository, feed ChangeFeed, selfID string, interval time.Duration) *Viewer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Viewer{
		leaderboard: leaderboard,
		users:       users,
		feed:        feed,
		selfID:      selfID,
		interval:    interval,
		logger:      log.Default(),
		now:         time.Now,
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Start performs the initial (loading-state) refresh, hooks up the change
// feed, and enables auto-refresh. Call Close on view exit or the feed
// subscription and ticker leak.
func (v *Viewer) Start(ctx context.Context) error {
	v.mu.Lock()
	v.ctx = ctx
	v.mu.Unlock()

	if err := v.Refresh(ctx, true); err != nil {
		return err
	}

	if v.feed != nil {
		events, cancel, err := v.feed.Subscribe(ctx, "leaderboard")
		if err != nil {
			return err
		}
		v.mu.Lock()
		v.cancelFeed = cancel
		v.mu.Unlock()
		go func() {
			for range events {
				go v.refreshSilently(ctx)
			}
		}()
	}

	v.SetAutoRefresh(true)
	return nil
}

// SetAutoRefresh starts or stops the interval timer. The change-feed
// subscription is unaffected.
func (v *Viewer) SetAutoRefresh(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if on == (v.stopTicker != nil) {
		return
	}
	if !on {
		close(v.stopTicker)
		v.stopTicker = nil
		return
	}
	stop := make(chan struct{})
	v.stopTicker = stop
	ctx := v.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				go v.refreshSilently(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close tears down the ticker, the feed subscription, and all subscribers.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.stopTicker != nil {
		close(v.stopTicker)
		v.stopTicker = nil
	}
	cancel := v.cancelFeed
	v.cancelFeed = nil
	for ch := range v.subscribers {
		close(ch)
		delete(v.subscribers, ch)
	}
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Snapshot returns the current view state.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Subscribe returns a channel receiving every snapshot replacement, starting
// with the current one. The caller must invoke cancel to avoid leaks.
func (v *Viewer) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)
	v.mu.Lock()
	v.subscribers[ch] = struct{}{}
	initial := v.snap
	v.mu.Unlock()

	ch <- initial

	cancel := func() {
		v.mu.Lock()
		if _, ok := v.subscribers[ch]; ok {
			delete(v.subscribers, ch)
			close(ch)
		}
		v.mu.Unlock()
	}
	return ch, cancel
}

func (v *Viewer) refreshSilently(ctx context.Context) {
	if err := v.Refresh(ctx, false); err != nil {
		v.logger.Printf("leaderboard refresh: %v", err)
	}
}

// Refresh re-reads the top rankings, resolves display names in one batched
// user lookup, locates the viewer's rank when outside the top entries, and
// pulls the previous-period table. forceLoading marks the snapshot as a
// full-page load rather than a background refresh.
func (v *Viewer) Refresh(ctx context.Context, forceLoading bool) error {
	if forceLoading {
		v.mu.Lock()
		v.snap.Loading = true
		v.mu.Unlock()
	}

	top, err := v.leaderboard.Top(ctx, topSize)
	if err != nil {
		v.mu.Lock()
		v.snap.Loading = false
		v.mu.Unlock()
		return err
	}

	current := v.rank(ctx, top, true)

	var selfRank *domain.RankedEntry
	if v.selfID != "" && !containsUser(current, v.selfID) {
		selfRank = v.locateSelf(ctx)
	}

	var previous []domain.RankedEntry
	prev, err := v.leaderboard.PreviousTop(ctx, topSize)
	if err != nil {
		v.logger.Printf("previous leaderboard: %v", err)
	} else {
		previous = v.rank(ctx, prev, false)
	}

	v.mu.Lock()
	v.snap = Snapshot{
		Current:       current,
		Previous:      previous,
		SelfRank:      selfRank,
		LastRefreshed: v.now(),
	}
	snap := v.snap
	for ch := range v.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow consumer never blocks a refresh.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	v.mu.Unlock()
	return nil
}

// rank resolves usernames for the given entries and assigns 1-based ranks.
func (v *Viewer) rank(ctx context.Context, entries []domain.LeaderboardEntry, markSelf bool) []domain.RankedEntry {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		users, err := v.users.GetByIDs(ctx, ids)
		if err != nil {
			v.logger.Printf("resolve usernames: %v", err)
		}
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}

	ranked := make([]domain.RankedEntry, 0, len(entries))
	for i, e := range entries {
		name, ok := names[e.UserID]
		if !ok || name == "" {
			name = anonymousName
		}
		ranked = append(ranked, domain.RankedEntry{
			UserID:        e.UserID,
			Rank:          i + 1,
			Username:      name,
			TotalXP:       e.TotalXP,
			IsCurrentUser: markSelf && e.UserID == v.selfID,
		})
	}
	return ranked
}

// locateSelf scans the full ordered leaderboard for the viewer's position.
// Linear in the table size; fine at current scale.
func (v *Viewer) locateSelf(ctx context.Context) *domain.RankedEntry {
	all, err := v.leaderboard.All(ctx)
	if err != nil {
		v.logger.Printf("full leaderboard scan: %v", err)
		return nil
	}
	for i, e := range all {
		if e.UserID == v.selfID {
			return &domain.RankedEntry{
				UserID:        e.UserID,
				Rank:          i + 1,
				TotalXP:       e.TotalXP,
				IsCurrentUser: true,
			}
		}
	}
	return nil
}

func containsUser(entries []domain.RankedEntry, id string) bool {
	for _, e := range entries {
		if e.UserID == id {
			return true
		}
	}
	return false
}
