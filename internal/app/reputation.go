package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibingbhudha77/vibex/internal/adapters/repository"
	"github.com/vibingbhudha77/vibex/internal/domain/lifecycle"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/internal/domain/rating"
	"github.com/vibingbhudha77/vibex/internal/domain/vouch"
	"github.com/vibingbhudha77/vibex/pkg/logger"
	"github.com/vibingbhudha77/vibex/pkg/metrics"

	"github.com/google/uuid"
)

// VouchResult reports the receiver's state after a vouch applied.
type VouchResult struct {
	NewRating     int `json:"new_rating"`
	PointsAwarded int `json:"points_awarded"`
}

// RatingInfo is a user's reputation shaped for display.
type RatingInfo struct {
	UserID       string `json:"user_id"`
	Score        int    `json:"score"`
	SessionCount int    `json:"session_count"`
	Tier         string `json:"tier"`
	Progress     int    `json:"progress"`
}

// ApplyVouch records a peer endorsement and folds it into the
// receiver's rating. The vouch row and the rating row are separate
// commit units: the vouch lands first, and if the rating commit
// exhausts its retries the vouch is rolled back.
func (s *Service) ApplyVouch(ctx context.Context, voucherID, receiverID string, sessionID int64, skill string) (VouchResult, error) {
	if voucherID == receiverID {
		metrics.RecordVouchRejected("self_vouch")
		return VouchResult{}, ErrSelfVouch
	}

	vs, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		metrics.RecordVouchRejected("not_found")
		return VouchResult{}, err
	}
	sess := vs.Session

	// A closed or expired session accepts no further vouches.
	if lifecycle.Phase(sess, s.now()) == model.PhaseEnded {
		metrics.RecordVouchRejected("session_ended")
		return VouchResult{}, fmt.Errorf("%w: session %d", ErrSessionEnded, sessionID)
	}

	if !sess.HasParticipant(voucherID) || !sess.HasParticipant(receiverID) {
		metrics.RecordVouchRejected("not_participant")
		return VouchResult{}, fmt.Errorf("%w: both users must be in session %d", ErrNotParticipant, sessionID)
	}

	key := vouch.Key(voucherID, receiverID, sessionID)
	if s.guard.SeenAndRecord(ctx, key) {
		metrics.RecordVouchRejected("duplicate")
		return VouchResult{}, ErrDuplicateVouch
	}

	n := s.store.VouchesBetween(ctx, voucherID, receiverID)
	points := vouch.PointsForNthVouch(n)

	v := model.Vouch{
		ID:         uuid.NewString(),
		VoucherID:  voucherID,
		ReceiverID: receiverID,
		SessionID:  sessionID,
		Skill:      skill,
		Points:     points,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateVouch(ctx, v); err != nil {
		if errors.Is(err, repository.ErrDuplicateVouch) {
			// Guard missed it (evicted entry); the store is the source
			// of truth and the key stays recorded.
			metrics.RecordVouchRejected("duplicate")
			return VouchResult{}, ErrDuplicateVouch
		}
		s.guard.Unrecord(ctx, key)
		return VouchResult{}, err
	}

	vouchesInSession := s.store.VouchesForReceiverInSession(ctx, receiverID, sessionID)
	totalParticipants := len(sess.Participants)

	newScore, err := s.commitRatingUpdate(ctx, receiverID, vouchesInSession, totalParticipants)
	if err != nil {
		// Roll the vouch back so a retry of the whole operation can
		// succeed cleanly.
		if delErr := s.store.DeleteVouch(ctx, voucherID, receiverID, sessionID); delErr != nil {
			s.logger.Error(ctx, "vouch rollback failed",
				logger.String("voucher", voucherID),
				logger.String("receiver", receiverID),
				logger.Int64("session_id", sessionID),
				logger.Error(delErr),
			)
		}
		s.guard.Unrecord(ctx, key)
		return VouchResult{}, err
	}

	metrics.RecordVouchApplied()
	s.notify(ctx, model.NotifyVouchReceived, voucherID, receiverID, sessionID)
	s.logger.Info(ctx, "vouch applied",
		logger.String("voucher", voucherID),
		logger.String("receiver", receiverID),
		logger.Int64("session_id", sessionID),
		logger.String("skill", skill),
		logger.Int("points", points),
		logger.Int("new_rating", newScore),
	)

	return VouchResult{NewRating: newScore, PointsAwarded: points}, nil
}

// commitRatingUpdate recomputes and conditionally commits the
// receiver's rating, retrying against concurrent vouch appliers.
func (s *Service) commitRatingUpdate(ctx context.Context, receiverID string, vouchesInSession, totalParticipants int) (int, error) {
	for attempt := 0; attempt < s.commitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		vr, err := s.store.GetRating(ctx, receiverID)
		if err != nil {
			return 0, err
		}
		current := vr.Rating

		next := model.Rating{
			UserID:       receiverID,
			Score:        rating.NewRating(current.Score, current.SessionCount, vouchesInSession, totalParticipants),
			SessionCount: current.SessionCount + 1,
		}

		if _, err := s.store.CommitRating(ctx, receiverID, vr.Version, next); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				metrics.RecordCommitRetry()
				if !backoff(ctx, attempt) {
					return 0, ctx.Err()
				}
				continue
			}
			return 0, err
		}

		metrics.RecordRatingUpdate()
		return next.Score, nil
	}
	return 0, ErrConcurrencyConflict
}

// RatingFor returns a user's rating with tier and progress for display.
// Unknown users get the baseline.
func (s *Service) RatingFor(ctx context.Context, userID string) (RatingInfo, error) {
	vr, err := s.store.GetRating(ctx, userID)
	if err != nil {
		return RatingInfo{}, err
	}
	r := vr.Rating

	return RatingInfo{
		UserID:       userID,
		Score:        r.Score,
		SessionCount: r.SessionCount,
		Tier:         rating.TierFor(r.Score).Name,
		Progress:     rating.ProgressToNextTier(r.Score),
	}, nil
}

// VouchHistoryFor returns a user's received vouches, newest first.
func (s *Service) VouchHistoryFor(ctx context.Context, userID string) ([]vouch.HistoryEntry, error) {
	vouches, err := s.store.VouchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	vr, err := s.store.GetRating(ctx, userID)
	if err != nil {
		return nil, err
	}
	return vouch.BuildHistory(vouches, vr.Rating.Score), nil
}

// Leaderboard returns the top n rated users. n is capped at the
// configured maximum.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]repository.RatingEntry, error) {
	if n > s.maxLeaderboardLimit {
		n = s.maxLeaderboardLimit
	}
	return s.store.TopRatings(ctx, n)
}
