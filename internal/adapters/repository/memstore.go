package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/pkg/metrics"
)

// vouchKey identifies a vouch tuple inside the store.
type vouchKey struct {
	voucherID  string
	receiverID string
	sessionID  int64
}

// sessionRow is a session plus its version counter.
type sessionRow struct {
	session model.Session
	version uint64
}

// ratingRow is a rating plus its version counter.
type ratingRow struct {
	rating  model.Rating
	version uint64
}

// MemStore is the in-memory Store implementation. All rows are deep
// copied on the way in and out so no caller ever aliases store state.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[int64]*sessionRow
	ratings  map[string]*ratingRow
	vouches  map[vouchKey]model.Vouch
	nextID   int64
}

// NewMemStore creates an empty in-memory store with configuration options.
func NewMemStore(opts ...StoreOption) *MemStore {
	s := &MemStore{
		sessions: make(map[int64]*sessionRow),
		ratings:  make(map[string]*ratingRow),
		vouches:  make(map[vouchKey]model.Vouch),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession persists a new session and assigns its id.
func (s *MemStore) CreateSession(_ context.Context, sess model.Session) (VersionedSession, error) {
	if err := sess.Validate(); err != nil {
		return VersionedSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess.ID = s.nextID
	s.nextID++
	s.sessions[sess.ID] = &sessionRow{session: sess.Clone(), version: 1}
	metrics.UpdateTotalSessions(len(s.sessions))
	return VersionedSession{Session: sess.Clone(), Version: 1}, nil
}

// GetSession returns a session with its current version.
func (s *MemStore) GetSession(_ context.Context, id int64) (VersionedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.sessions[id]
	if !ok {
		return VersionedSession{}, ErrSessionNotFound
	}
	return VersionedSession{Session: row.session.Clone(), Version: row.version}, nil
}

// CommitSession conditionally replaces the session row.
func (s *MemStore) CommitSession(_ context.Context, id int64, expectedVersion uint64, sess model.Session) (VersionedSession, error) {
	if err := sess.Validate(); err != nil {
		return VersionedSession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.sessions[id]
	if !ok {
		return VersionedSession{}, ErrSessionNotFound
	}
	if row.version != expectedVersion {
		metrics.RecordCommitConflict("session")
		return VersionedSession{}, ErrVersionConflict
	}

	sess.ID = id
	row.session = sess.Clone()
	row.version++
	return VersionedSession{Session: sess.Clone(), Version: row.version}, nil
}

// ListSessions returns every stored session, newest start first.
func (s *MemStore) ListSessions(_ context.Context) ([]VersionedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]VersionedSession, 0, len(s.sessions))
	for _, row := range s.sessions {
		out = append(out, VersionedSession{Session: row.session.Clone(), Version: row.version})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Session.EventTime.Equal(out[j].Session.EventTime) {
			return out[i].Session.EventTime.After(out[j].Session.EventTime)
		}
		return out[i].Session.ID < out[j].Session.ID
	})
	return out, nil
}

// ActiveSessionFor scans for a session userID belongs to whose derived
// phase still accepts members.
func (s *MemStore) ActiveSessionFor(_ context.Context, userID string, now time.Time, phase func(model.Session, time.Time) model.Phase) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, row := range s.sessions {
		if !row.session.HasParticipant(userID) {
			continue
		}
		switch phase(row.session, now) {
		case model.PhaseActive, model.PhaseEndingSoon:
			return id, true
		}
	}
	return 0, false
}

// GetRating returns a user's rating; unknown users get the baseline at
// version zero so the first commit behaves like any other conditional
// write.
func (s *MemStore) GetRating(_ context.Context, userID string) (VersionedRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.ratings[userID]
	if !ok {
		return VersionedRating{Rating: model.NewRating(userID), Version: 0}, nil
	}
	return VersionedRating{Rating: row.rating, Version: row.version}, nil
}

// CommitRating conditionally replaces a rating row. Version zero means
// the caller read the baseline and the row must still be absent.
func (s *MemStore) CommitRating(_ context.Context, userID string, expectedVersion uint64, r model.Rating) (VersionedRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.ratings[userID]
	if !ok {
		if expectedVersion != 0 {
			metrics.RecordCommitConflict("rating")
			return VersionedRating{}, ErrVersionConflict
		}
		r.UserID = userID
		s.ratings[userID] = &ratingRow{rating: r, version: 1}
		return VersionedRating{Rating: r, Version: 1}, nil
	}
	if row.version != expectedVersion {
		metrics.RecordCommitConflict("rating")
		return VersionedRating{}, ErrVersionConflict
	}
	r.UserID = userID
	row.rating = r
	row.version++
	return VersionedRating{Rating: r, Version: row.version}, nil
}

// CreateVouch appends to the vouch log, enforcing tuple uniqueness.
func (s *MemStore) CreateVouch(_ context.Context, v model.Vouch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := vouchKey{voucherID: v.VoucherID, receiverID: v.ReceiverID, sessionID: v.SessionID}
	if _, exists := s.vouches[key]; exists {
		return ErrDuplicateVouch
	}
	s.vouches[key] = v
	return nil
}

// DeleteVouch removes a vouch by tuple.
func (s *MemStore) DeleteVouch(_ context.Context, voucherID, receiverID string, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.vouches, vouchKey{voucherID: voucherID, receiverID: receiverID, sessionID: sessionID})
	return nil
}

// VouchesBetween counts vouches voucherID has given receiverID.
func (s *MemStore) VouchesBetween(_ context.Context, voucherID, receiverID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.vouches {
		if key.voucherID == voucherID && key.receiverID == receiverID {
			n++
		}
	}
	return n
}

// VouchesForReceiverInSession counts a receiver's vouches in one session.
func (s *MemStore) VouchesForReceiverInSession(_ context.Context, receiverID string, sessionID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.vouches {
		if key.receiverID == receiverID && key.sessionID == sessionID {
			n++
		}
	}
	return n
}

// VouchHistory returns receiverID's vouches, newest first.
func (s *MemStore) VouchHistory(_ context.Context, receiverID string) ([]model.Vouch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Vouch, 0)
	for key, v := range s.vouches {
		if key.receiverID == receiverID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// TopRatings returns the n highest-rated users, score desc then user
// id asc for a deterministic order.
func (s *MemStore) TopRatings(_ context.Context, n int) ([]RatingEntry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]RatingEntry, 0, len(s.ratings))
	for id, row := range s.ratings {
		entries = append(entries, RatingEntry{UserID: id, Score: row.rating.Score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Count returns the number of sessions tracked.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
