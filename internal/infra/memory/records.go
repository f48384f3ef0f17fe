package memory

import (
	"context"
	"sort"
	"sync"

	"quizhub-service/internal/domain"
)

// RecordStore is an in-memory implementation of every record-store
// repository. It backs unit tests and database-free demo runs.
type RecordStore struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	progress    []domain.ProgressRecord
	attempts    []domain.AttemptRecord
	leaderboard map[string]int
	previous    map[string]int
	streaks     map[string]domain.StreakRecord
	subscribers map[string]map[chan struct{}]struct{}
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		users:       make(map[string]domain.User),
		leaderboard: make(map[string]int),
		previous:    make(map[string]int),
		streaks:     make(map[string]domain.StreakRecord),
		subscribers: make(map[string]map[chan struct{}]struct{}),
	}
}

func (s *RecordStore) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *RecordStore) Insert(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *RecordStore) GetByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// Progress returns a ProgressRepository view of the store.
func (s *RecordStore) Progress() *ProgressRepo { return &ProgressRepo{store: s} }

// Attempts returns an AttemptRepository view of the store.
func (s *RecordStore) Attempts() *AttemptRepo { return &AttemptRepo{store: s} }

type ProgressRepo struct{ store *RecordStore }

func (r *ProgressRepo) Insert(_ context.Context, rec domain.ProgressRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.progress = append(r.store.progress, rec)
	return nil
}

// Records copies out the inserted rows, for assertions.
func (r *ProgressRepo) Records() []domain.ProgressRecord {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.ProgressRecord(nil), r.store.progress...)
}

type AttemptRepo struct{ store *RecordStore }

func (r *AttemptRepo) Insert(_ context.Context, rec domain.AttemptRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.attempts = append(r.store.attempts, rec)
	return nil
}

func (r *AttemptRepo) Records() []domain.AttemptRecord {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.AttemptRecord(nil), r.store.attempts...)
}

func (s *RecordStore) GetEntry(_ context.Context, userID string) (domain.LeaderboardEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total, ok := s.leaderboard[userID]
	if !ok {
		return domain.LeaderboardEntry{}, false, nil
	}
	return domain.LeaderboardEntry{UserID: userID, TotalXP: total}, true, nil
}

func (s *RecordStore) UpsertTotal(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	s.leaderboard[entry.UserID] = entry.TotalXP
	s.mu.Unlock()
	s.notify("leaderboard")
	return nil
}

func (s *RecordStore) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := sortedEntries(s.leaderboard)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *RecordStore) All(_ context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedEntries(s.leaderboard), nil
}

func (s *RecordStore) PreviousTop(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := sortedEntries(s.previous)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// SetPrevious seeds the previous-period table.
func (s *RecordStore) SetPrevious(totals map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous = make(map[string]int, len(totals))
	for id, xp := range totals {
		s.previous[id] = xp
	}
}

func (s *RecordStore) Get(_ context.Context, userID string) (domain.StreakRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.streaks[userID]
	return rec, ok, nil
}

func (s *RecordStore) Upsert(_ context.Context, rec domain.StreakRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks[rec.UserID] = rec
	return nil
}

// Subscribe implements the change feed over in-process channels.
func (s *RecordStore) Subscribe(_ context.Context, table string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	if s.subscribers[table] == nil {
		s.subscribers[table] = make(map[chan struct{}]struct{})
	}
	s.subscribers[table][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subscribers[table]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *RecordStore) notify(table string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers[table] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func sortedEntries(totals map[string]int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(totals))
	for id, xp := range totals {
		entries = append(entries, domain.LeaderboardEntry{UserID: id, TotalXP: xp})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalXP != entries[j].TotalXP {
			return entries[i].TotalXP > entries[j].TotalXP
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}
