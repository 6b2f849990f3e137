package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vibingbhudha77/vibex/internal/adapters/repository"
	"github.com/vibingbhudha77/vibex/internal/domain/lifecycle"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/pkg/logger"
	"github.com/vibingbhudha77/vibex/pkg/metrics"
)

// JoinResult is the canonical membership state after a join or leave.
type JoinResult struct {
	SessionID        int64                 `json:"session_id"`
	Participants     []string              `json:"participants"`
	ParticipantRoles map[string]model.Role `json:"participant_roles"`
}

// FeedItem is one session on the map feed with its derived phase.
type FeedItem struct {
	Session model.Session `json:"session"`
	Phase   model.Phase   `json:"phase"`
}

// CreateSession validates and persists a new session. The creator is
// seeded into the participant list with the role their kind implies.
func (s *Service) CreateSession(ctx context.Context, sess model.Session) (model.Session, error) {
	sess.Status = model.StatusActive
	if sess.EventTime.IsZero() {
		sess.EventTime = s.now()
	}

	role := model.CreatorRole(sess.Kind)
	sess.Participants = []string{sess.CreatorID}
	sess.ParticipantRoles = map[string]model.Role{sess.CreatorID: role}

	if err := sess.Validate(); err != nil {
		return model.Session{}, err
	}

	vs, err := s.store.CreateSession(ctx, sess)
	if err != nil {
		return model.Session{}, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info(ctx, "session created",
		logger.Int64("session_id", vs.Session.ID),
		logger.String("kind", string(vs.Session.Kind)),
		logger.String("creator", vs.Session.CreatorID),
	)
	return vs.Session, nil
}

// GetSession returns a session with its derived phase.
func (s *Service) GetSession(ctx context.Context, id int64) (FeedItem, error) {
	vs, err := s.store.GetSession(ctx, id)
	if err != nil {
		return FeedItem{}, err
	}
	return FeedItem{
		Session: vs.Session,
		Phase:   lifecycle.Phase(vs.Session, s.now()),
	}, nil
}

// Join adds userID to a session, or changes their role if they are
// already a member. The whole mutation is one conditional commit,
// retried against concurrent writers.
func (s *Service) Join(ctx context.Context, sessionID int64, userID string, role model.Role) (JoinResult, error) {
	for attempt := 0; attempt < s.commitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return JoinResult{}, err
		}

		vs, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			metrics.RecordJoin("not_found")
			return JoinResult{}, err
		}
		sess := vs.Session

		phase := lifecycle.Phase(sess, s.now())
		if !lifecycle.Joinable(phase) {
			metrics.RecordJoin("not_joinable")
			return JoinResult{}, fmt.Errorf("%w: phase %s", ErrSessionNotJoinable, phase)
		}

		if role == "" {
			role = model.DefaultRole(sess.Kind)
		}
		if !model.RoleAllowed(sess.Kind, role) {
			metrics.RecordJoin("invalid_role")
			return JoinResult{}, fmt.Errorf("%w: %s cannot be %s", ErrInvalidRole, sess.Kind, role)
		}
		// The borrow creator is the one asking; they can never answer
		// their own request as the giver.
		if sess.Kind == model.KindBorrow && userID == sess.CreatorID {
			metrics.RecordJoin("invalid_role")
			return JoinResult{}, fmt.Errorf("%w: borrow creator cannot join as giver", ErrInvalidRole)
		}

		if sess.HasParticipant(userID) {
			if sess.ParticipantRoles[userID] == role {
				// Idempotent re-join.
				metrics.RecordJoin("noop")
				return joinResult(sess), nil
			}
			next := sess.Clone()
			next.ParticipantRoles[userID] = role
			committed, err := s.store.CommitSession(ctx, sessionID, vs.Version, next)
			if errors.Is(err, repository.ErrVersionConflict) {
				metrics.RecordCommitRetry()
				if !backoff(ctx, attempt) {
					return JoinResult{}, ctx.Err()
				}
				continue
			}
			if err != nil {
				return JoinResult{}, err
			}
			metrics.RecordJoin("role_change")
			return joinResult(committed.Session), nil
		}

		if activeID, ok := s.store.ActiveSessionFor(ctx, userID, s.now(), lifecycle.Phase); ok && activeID != sessionID {
			metrics.RecordJoin("already_in_session")
			return JoinResult{}, fmt.Errorf("%w: session %d", ErrAlreadyInSession, activeID)
		}

		next := sess.Clone()
		next.Participants = append(next.Participants, userID)
		next.ParticipantRoles[userID] = role

		committed, err := s.store.CommitSession(ctx, sessionID, vs.Version, next)
		if errors.Is(err, repository.ErrVersionConflict) {
			metrics.RecordCommitRetry()
			if !backoff(ctx, attempt) {
				return JoinResult{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			return JoinResult{}, err
		}

		metrics.RecordJoin("success")
		s.notify(ctx, model.NotifySessionJoin, userID, committed.Session.CreatorID, sessionID)
		s.logger.Info(ctx, "user joined session",
			logger.Int64("session_id", sessionID),
			logger.String("user", userID),
			logger.String("role", string(role)),
		)
		return joinResult(committed.Session), nil
	}

	metrics.RecordJoin("conflict")
	return JoinResult{}, ErrConcurrencyConflict
}

// Leave removes userID from a session. A creator with other members
// present must transfer ownership first; a creator alone closes the
// session by leaving.
func (s *Service) Leave(ctx context.Context, sessionID int64, userID string) (JoinResult, error) {
	for attempt := 0; attempt < s.commitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return JoinResult{}, err
		}

		vs, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			metrics.RecordLeave("not_found")
			return JoinResult{}, err
		}
		sess := vs.Session

		// A closed or expired session keeps its final membership.
		if lifecycle.Phase(sess, s.now()) == model.PhaseEnded {
			metrics.RecordLeave("session_ended")
			return JoinResult{}, fmt.Errorf("%w: session %d", ErrSessionEnded, sessionID)
		}

		if !sess.HasParticipant(userID) {
			metrics.RecordLeave("not_participant")
			return JoinResult{}, ErrNotParticipant
		}

		next := sess.Clone()
		if userID == sess.CreatorID {
			if len(sess.Participants) > 1 {
				metrics.RecordLeave("must_transfer")
				return JoinResult{}, ErrCreatorMustTransfer
			}
			next.Status = model.StatusClosed
		}
		removeParticipant(&next, userID)

		committed, err := s.store.CommitSession(ctx, sessionID, vs.Version, next)
		if errors.Is(err, repository.ErrVersionConflict) {
			metrics.RecordCommitRetry()
			if !backoff(ctx, attempt) {
				return JoinResult{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			return JoinResult{}, err
		}

		metrics.RecordLeave("success")
		if committed.Session.Status == model.StatusClosed {
			metrics.RecordSessionClosed("creator_left")
		}
		s.notify(ctx, model.NotifySessionLeave, userID, committed.Session.CreatorID, sessionID)
		return joinResult(committed.Session), nil
	}

	metrics.RecordLeave("conflict")
	return JoinResult{}, ErrConcurrencyConflict
}

// TransferOwnership hands the creator role to another participant.
func (s *Service) TransferOwnership(ctx context.Context, sessionID int64, fromID, toID string) error {
	for attempt := 0; attempt < s.commitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		vs, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		sess := vs.Session

		if fromID != sess.CreatorID {
			return ErrNotCreator
		}
		if !sess.HasParticipant(toID) {
			return fmt.Errorf("%w: %s", ErrNotParticipant, toID)
		}

		next := sess.Clone()
		next.CreatorID = toID

		if _, err := s.store.CommitSession(ctx, sessionID, vs.Version, next); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				metrics.RecordCommitRetry()
				if !backoff(ctx, attempt) {
					return ctx.Err()
				}
				continue
			}
			return err
		}

		s.notify(ctx, model.NotifyOwnershipTransfer, fromID, toID, sessionID)
		s.logger.Info(ctx, "ownership transferred",
			logger.Int64("session_id", sessionID),
			logger.String("from", fromID),
			logger.String("to", toID),
		)
		return nil
	}
	return ErrConcurrencyConflict
}

// Extend lengthens a session's duration. Creator-only; a session whose
// derived phase is already ended cannot be extended.
func (s *Service) Extend(ctx context.Context, sessionID int64, userID string, byMinutes int) (model.Session, error) {
	if byMinutes <= 0 {
		return model.Session{}, ErrInvalidExtension
	}

	for attempt := 0; attempt < s.commitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.Session{}, err
		}

		vs, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return model.Session{}, err
		}
		sess := vs.Session

		if userID != sess.CreatorID {
			return model.Session{}, ErrNotCreator
		}
		if lifecycle.Phase(sess, s.now()) == model.PhaseEnded {
			return model.Session{}, ErrSessionEnded
		}

		next := sess.Clone()
		next.Duration += byMinutes

		committed, err := s.store.CommitSession(ctx, sessionID, vs.Version, next)
		if errors.Is(err, repository.ErrVersionConflict) {
			metrics.RecordCommitRetry()
			if !backoff(ctx, attempt) {
				return model.Session{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			return model.Session{}, err
		}
		return committed.Session, nil
	}
	return model.Session{}, ErrConcurrencyConflict
}

// Close marks a session closed. Creator-only and idempotent.
func (s *Service) Close(ctx context.Context, sessionID int64, userID string) error {
	for attempt := 0; attempt < s.commitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		vs, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		sess := vs.Session

		if userID != sess.CreatorID {
			return ErrNotCreator
		}
		if sess.Status == model.StatusClosed {
			return nil
		}

		next := sess.Clone()
		next.Status = model.StatusClosed

		if _, err := s.store.CommitSession(ctx, sessionID, vs.Version, next); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				metrics.RecordCommitRetry()
				if !backoff(ctx, attempt) {
					return ctx.Err()
				}
				continue
			}
			return err
		}

		metrics.RecordSessionClosed("manual")
		return nil
	}
	return ErrConcurrencyConflict
}

// Feed returns the live map feed: every session whose derived phase is
// not ended, newest start first. Borrow sessions that sat unanswered
// past their auto-close window are swept closed on the way through.
func (s *Service) Feed(ctx context.Context) ([]FeedItem, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]FeedItem, 0, len(sessions))
	for _, vs := range sessions {
		phase := lifecycle.Phase(vs.Session, now)
		switch phase {
		case model.PhaseEnded:
			continue
		case model.PhaseAutoCloseEligible:
			s.sweepBorrow(ctx, vs)
			continue
		default:
			items = append(items, FeedItem{Session: vs.Session, Phase: phase})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Session.EventTime.After(items[j].Session.EventTime)
	})
	return items, nil
}

// sweepBorrow closes an unanswered borrow session. Best effort: a
// version conflict means someone else touched the row, and the next
// feed read will see the fresh state.
func (s *Service) sweepBorrow(ctx context.Context, vs repository.VersionedSession) {
	next := vs.Session.Clone()
	next.Status = model.StatusClosed

	if _, err := s.store.CommitSession(ctx, vs.Session.ID, vs.Version, next); err != nil {
		s.logger.Debug(ctx, "borrow sweep skipped",
			logger.Int64("session_id", vs.Session.ID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordSessionClosed("borrow_unanswered")
}

func joinResult(sess model.Session) JoinResult {
	out := sess.Clone()
	return JoinResult{
		SessionID:        out.ID,
		Participants:     out.Participants,
		ParticipantRoles: out.ParticipantRoles,
	}
}

func removeParticipant(sess *model.Session, userID string) {
	for i, id := range sess.Participants {
		if id == userID {
			sess.Participants = append(sess.Participants[:i], sess.Participants[i+1:]...)
			break
		}
	}
	delete(sess.ParticipantRoles, userID)
}
