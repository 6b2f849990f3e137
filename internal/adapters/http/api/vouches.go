// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vibingbhudha77/vibex/internal/domain/vouch"
)

// VouchDependencies defines the interface for vouch operations.
type VouchDependencies interface {
	ApplyVouch(ctx context.Context, voucherID, receiverID string, sessionID int64, skill string) (VouchResult, error)
	VouchHistoryFor(ctx context.Context, userID string) ([]vouch.HistoryEntry, error)
}

// VouchesHandler handles vouch submission and history reads.
type VouchesHandler struct {
	deps VouchDependencies
}

// NewVouchesHandler creates a new vouches handler.
func NewVouchesHandler(deps VouchDependencies) *VouchesHandler {
	return &VouchesHandler{deps: deps}
}

// vouchRequest mirrors the wire schema for POST /vouches.
type vouchRequest struct {
	VoucherID  string `json:"voucher_id"`
	ReceiverID string `json:"receiver_id"`
	SessionID  int64  `json:"session_id"`
	Skill      string `json:"skill"`
}

func (v vouchRequest) validate() error {
	switch {
	case strings.TrimSpace(v.VoucherID) == "":
		return errors.New("missing voucher_id")
	case strings.TrimSpace(v.ReceiverID) == "":
		return errors.New("missing receiver_id")
	case v.SessionID < 1:
		return errors.New("missing session_id")
	case strings.TrimSpace(v.Skill) == "":
		return errors.New("missing skill")
	}
	return nil
}

type vouchResponse struct {
	Success       bool `json:"success"`
	NewRating     int  `json:"new_rating"`
	PointsAwarded int  `json:"points_awarded"`
}

type historyResponse struct {
	Success bool                 `json:"success"`
	Vouches []vouch.HistoryEntry `json:"vouches"`
}

// HandlePostVouch handles POST /vouches requests.
func (h *VouchesHandler) HandlePostVouch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_vouch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req vouchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.ApplyVouch(r.Context(), req.VoucherID, req.ReceiverID, req.SessionID, req.Skill)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, vouchResponse{
		Success:       true,
		NewRating:     res.NewRating,
		PointsAwarded: res.PointsAwarded,
	})
}

// HandleGetHistory handles GET /vouches/{user_id} requests.
func (h *VouchesHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.vouch_history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/vouches/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	history, err := h.deps.VouchHistoryFor(r.Context(), userID)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Success: true, Vouches: history})
}
