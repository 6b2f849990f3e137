// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vibingbhudha77/vibex/internal/adapters/repository"
	service "github.com/vibingbhudha77/vibex/internal/app"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/internal/domain/vouch"
)

// Read/write shapes reused from the coordinator layer.
type (
	// JoinResult mirrors the membership state returned by join and leave.
	JoinResult = service.JoinResult
	// FeedItem mirrors one map feed entry.
	FeedItem = service.FeedItem
	// VouchResult mirrors the outcome of an applied vouch.
	VouchResult = service.VouchResult
	// RatingInfo mirrors the rating dashboard read.
	RatingInfo = service.RatingInfo
	// RatingEntry mirrors one leaderboard row.
	RatingEntry = repository.RatingEntry
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateSession(ctx context.Context, s model.Session) (model.Session, error)
	GetSession(ctx context.Context, id int64) (FeedItem, error)
	Feed(ctx context.Context) ([]FeedItem, error)
	Join(ctx context.Context, sessionID int64, userID string, role model.Role) (JoinResult, error)
	Leave(ctx context.Context, sessionID int64, userID string) (JoinResult, error)
	TransferOwnership(ctx context.Context, sessionID int64, fromID, toID string) error
	Extend(ctx context.Context, sessionID int64, userID string, byMinutes int) (model.Session, error)
	Close(ctx context.Context, sessionID int64, userID string) error

	ApplyVouch(ctx context.Context, voucherID, receiverID string, sessionID int64, skill string) (VouchResult, error)
	RatingFor(ctx context.Context, userID string) (RatingInfo, error)
	VouchHistoryFor(ctx context.Context, userID string) ([]vouch.HistoryEntry, error)
	Leaderboard(ctx context.Context, n int) ([]RatingEntry, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionsHandler    *SessionsHandler
	vouchesHandler     *VouchesHandler
	ratingsHandler     *RatingsHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		sessionsHandler:    NewSessionsHandler(deps),
		vouchesHandler:     NewVouchesHandler(deps),
		ratingsHandler:     NewRatingsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSessionAction, "session_action"))
	mux.HandleFunc("/vouches", MetricsMiddleware(s.vouchesHandler.HandlePostVouch, "vouches"))
	mux.HandleFunc("/vouches/", MetricsMiddleware(s.vouchesHandler.HandleGetHistory, "vouch_history"))
	mux.HandleFunc("/ratings/", MetricsMiddleware(s.ratingsHandler.HandleGetRating, "ratings"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Success: false, Error: msg, ErrorCode: code})
}

// writeServiceError translates coordinator errors into stable wire
// codes. Unknown errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_role", err)
	case errors.Is(err, service.ErrSelfVouch):
		writeError(w, http.StatusBadRequest, "self_vouch", err)
	case errors.Is(err, service.ErrInvalidExtension):
		writeError(w, http.StatusBadRequest, "invalid_extension", err)
	case errors.Is(err, service.ErrNotCreator):
		writeError(w, http.StatusForbidden, "not_creator", err)
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "not_participant", err)
	case errors.Is(err, service.ErrSessionNotJoinable):
		writeError(w, http.StatusConflict, "not_joinable", err)
	case errors.Is(err, service.ErrSessionEnded):
		writeError(w, http.StatusConflict, "session_ended", err)
	case errors.Is(err, service.ErrAlreadyInSession):
		writeError(w, http.StatusConflict, "already_in_session", err)
	case errors.Is(err, service.ErrCreatorMustTransfer):
		writeError(w, http.StatusConflict, "must_transfer", err)
	case errors.Is(err, service.ErrDuplicateVouch), errors.Is(err, repository.ErrDuplicateVouch):
		writeError(w, http.StatusConflict, "duplicate_vouch", err)
	case errors.Is(err, service.ErrConcurrencyConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, model.ErrMissingTitle),
		errors.Is(err, model.ErrMissingCreator),
		errors.Is(err, model.ErrInvalidDuration),
		errors.Is(err, model.ErrRoleMapMismatch):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
