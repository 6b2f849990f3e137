// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vibingbhudha77/vibex/internal/domain/model"
)

// SessionDependencies defines the interface for session operations.
type SessionDependencies interface {
	CreateSession(ctx context.Context, s model.Session) (model.Session, error)
	GetSession(ctx context.Context, id int64) (FeedItem, error)
	Feed(ctx context.Context) ([]FeedItem, error)
	Join(ctx context.Context, sessionID int64, userID string, role model.Role) (JoinResult, error)
	Leave(ctx context.Context, sessionID int64, userID string) (JoinResult, error)
	TransferOwnership(ctx context.Context, sessionID int64, fromID, toID string) error
	Extend(ctx context.Context, sessionID int64, userID string, byMinutes int) (model.Session, error)
	Close(ctx context.Context, sessionID int64, userID string) error
}

// SessionsHandler handles session creation, the map feed, and the
// per-session membership actions.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// createSessionRequest mirrors the wire schema for POST /sessions.
type createSessionRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	SessionType     string   `json:"session_type"`
	Emoji           string   `json:"emoji"`
	EventTime       string   `json:"event_time"`
	Duration        int      `json:"duration"`
	CreatorID       string   `json:"creator_id"`
	Privacy         string   `json:"privacy"`
	VisibleToTags   []string `json:"visible_to_tags"`
	HelpCategory    string   `json:"help_category"`
	SkillTag        string   `json:"skill_tag"`
	ExpectedOutcome string   `json:"expected_outcome"`
	ReturnTime      string   `json:"return_time"`
	Urgency         string   `json:"urgency"`
}

func (c createSessionRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(c.CreatorID) == "":
		return errors.New("missing creator_id")
	case strings.TrimSpace(c.SessionType) == "":
		return errors.New("missing session_type")
	case c.Duration <= 0:
		return errors.New("duration must be positive minutes")
	}
	if c.EventTime != "" {
		if _, err := time.Parse(time.RFC3339, c.EventTime); err != nil {
			return errors.New("invalid event_time; must be RFC3339")
		}
	}
	if c.ReturnTime != "" {
		if _, err := time.Parse(time.RFC3339, c.ReturnTime); err != nil {
			return errors.New("invalid return_time; must be RFC3339")
		}
	}
	return nil
}

func (c createSessionRequest) toSession() model.Session {
	s := model.Session{
		Title:           c.Title,
		Description:     c.Description,
		Lat:             c.Lat,
		Lng:             c.Lng,
		Kind:            model.SessionKind(c.SessionType),
		Emoji:           c.Emoji,
		Duration:        c.Duration,
		CreatorID:       c.CreatorID,
		Privacy:         model.Privacy(c.Privacy),
		VisibleToTags:   c.VisibleToTags,
		HelpCategory:    c.HelpCategory,
		SkillTag:        c.SkillTag,
		ExpectedOutcome: c.ExpectedOutcome,
		Urgency:         model.Urgency(c.Urgency),
	}
	if c.Privacy == "" {
		s.Privacy = model.PrivacyPublic
	}
	if c.EventTime != "" {
		t, _ := time.Parse(time.RFC3339, c.EventTime)
		s.EventTime = t
	}
	if c.ReturnTime != "" {
		t, _ := time.Parse(time.RFC3339, c.ReturnTime)
		s.ReturnTime = &t
	}
	return s
}

type sessionResponse struct {
	Success bool          `json:"success"`
	Session model.Session `json:"session"`
	Phase   model.Phase   `json:"phase,omitempty"`
}

type feedResponse struct {
	Success  bool       `json:"success"`
	Sessions []FeedItem `json:"sessions"`
}

type joinResponse struct {
	Success          bool                  `json:"success"`
	SessionID        int64                 `json:"session_id"`
	Participants     []string              `json:"participants"`
	ParticipantRoles map[string]model.Role `json:"participant_roles"`
}

type actionRequest struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Minutes  int    `json:"minutes"`
	ToUserID string `json:"to_user_id"`
}

type okResponse struct {
	Success bool `json:"success"`
}

// HandleSessions handles POST /sessions and GET /sessions.
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.sessions"
	switch r.Method {
	case http.MethodPost:
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		sess, err := h.deps.CreateSession(r.Context(), req.toSession())
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, sessionResponse{Success: true, Session: sess})
	case http.MethodGet:
		items, err := h.deps.Feed(r.Context())
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, feedResponse{Success: true, Sessions: items})
	default:
		http.NotFound(w, r)
	}
}

// HandleSessionAction handles GET /sessions/{id} and
// POST /sessions/{id}/{join|leave|extend|close|transfer}.
func (h *SessionsHandler) HandleSessionAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_action"

	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	idStr, action, _ := strings.Cut(path, "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if action == "" {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		item, err := h.deps.GetSession(r.Context(), id)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Success: true, Session: item.Session, Phase: item.Phase})
		return
	}

	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}

	switch action {
	case "join":
		res, err := h.deps.Join(r.Context(), id, req.UserID, model.Role(req.Role))
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, joinResponse{
			Success:          true,
			SessionID:        res.SessionID,
			Participants:     res.Participants,
			ParticipantRoles: res.ParticipantRoles,
		})
	case "leave":
		res, err := h.deps.Leave(r.Context(), id, req.UserID)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, joinResponse{
			Success:          true,
			SessionID:        res.SessionID,
			Participants:     res.Participants,
			ParticipantRoles: res.ParticipantRoles,
		})
	case "extend":
		sess, err := h.deps.Extend(r.Context(), id, req.UserID, req.Minutes)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Success: true, Session: sess})
	case "close":
		if err := h.deps.Close(r.Context(), id, req.UserID); err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, okResponse{Success: true})
	case "transfer":
		if strings.TrimSpace(req.ToUserID) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing to_user_id")))
			return
		}
		if err := h.deps.TransferOwnership(r.Context(), id, req.UserID, req.ToUserID); err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, okResponse{Success: true})
	default:
		http.NotFound(w, r)
	}
}
