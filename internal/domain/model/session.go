// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// SessionKind enumerates the four supported session types.
type SessionKind string

// Session kinds.
const (
	KindVibe   SessionKind = "vibe"   // social gathering
	KindSeek   SessionKind = "seek"   // asking for help
	KindCookie SessionKind = "cookie" // offering a skill
	KindBorrow SessionKind = "borrow" // item exchange
)

// Valid reports whether k is one of the known session kinds.
func (k SessionKind) Valid() bool {
	switch k {
	case KindVibe, KindSeek, KindCookie, KindBorrow:
		return true
	}
	return false
}

// Role enumerates participant roles within a session.
type Role string

// Participant roles.
const (
	RoleSeeking     Role = "seeking"
	RoleOffering    Role = "offering"
	RoleParticipant Role = "participant"
	RoleGiver       Role = "giver"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeking, RoleOffering, RoleParticipant, RoleGiver:
		return true
	}
	return false
}

// allowedRoles is the per-kind joiner role legality table.
// Borrow joiners answer the creator's request, so only giver is legal;
// seek sessions accept helpers and co-seekers.
var allowedRoles = map[SessionKind][]Role{
	KindVibe:   {RoleParticipant},
	KindSeek:   {RoleSeeking, RoleOffering},
	KindCookie: {RoleParticipant},
	KindBorrow: {RoleGiver},
}

// AllowedRoles returns the joiner roles that are legal for kind.
func AllowedRoles(kind SessionKind) []Role {
	roles := allowedRoles[kind]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// RoleAllowed reports whether role is a legal joiner role for kind.
func RoleAllowed(kind SessionKind, role Role) bool {
	for _, r := range allowedRoles[kind] {
		if r == role {
			return true
		}
	}
	return false
}

// DefaultRole returns the role assigned when a joiner does not pick one.
func DefaultRole(kind SessionKind) Role {
	switch kind {
	case KindBorrow:
		return RoleGiver
	case KindSeek:
		return RoleOffering
	default:
		return RoleParticipant
	}
}

// CreatorRole returns the role the creator holds in a new session.
func CreatorRole(kind SessionKind) Role {
	switch kind {
	case KindSeek, KindBorrow:
		return RoleSeeking
	case KindCookie:
		return RoleOffering
	default:
		return RoleParticipant
	}
}

// Status is the coarse persisted session state. The fine-grained
// lifecycle phase is always derived from time, never stored.
type Status string

// Persisted session statuses.
const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Phase is the derived lifecycle stage of a session at a given instant.
type Phase string

// Lifecycle phases.
const (
	PhaseScheduled         Phase = "scheduled"
	PhaseActive            Phase = "active"
	PhaseEndingSoon        Phase = "ending_soon"
	PhaseAutoCloseEligible Phase = "auto_close_eligible"
	PhaseEnded             Phase = "ended"
)

// Privacy controls session visibility on the map.
type Privacy string

// Privacy levels.
const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// Urgency grades a borrow request.
type Urgency string

// Borrow urgency levels.
const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Session is a time-boxed, located activity instance.
//
// Invariant: Participants and the key set of ParticipantRoles match
// one-to-one; the coordinator is the only writer and preserves this.
type Session struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Kind        SessionKind `json:"session_type"`
	Emoji       string      `json:"emoji"`

	EventTime time.Time `json:"event_time"`
	Duration  int       `json:"duration"` // minutes
	Status    Status    `json:"status"`

	CreatorID        string          `json:"creator_id"`
	Participants     []string        `json:"participants"`
	ParticipantRoles map[string]Role `json:"participant_roles"`

	Privacy       Privacy  `json:"privacy"`
	VisibleToTags []string `json:"visible_to_tags,omitempty"`

	// Seek and cookie fields.
	HelpCategory    string `json:"help_category,omitempty"`
	SkillTag        string `json:"skill_tag,omitempty"`
	ExpectedOutcome string `json:"expected_outcome,omitempty"`

	// Borrow fields.
	ReturnTime *time.Time `json:"return_time,omitempty"`
	Urgency    Urgency    `json:"urgency,omitempty"`
}

// Start returns the session's start instant.
func (s Session) Start() time.Time {
	return s.EventTime
}

// End returns the session's end instant.
func (s Session) End() time.Time {
	return s.EventTime.Add(time.Duration(s.Duration) * time.Minute)
}

// HasParticipant reports whether userID is in the participant list.
func (s Session) HasParticipant(userID string) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never alias store state.
func (s Session) Clone() Session {
	out := s
	out.Participants = make([]string, len(s.Participants))
	copy(out.Participants, s.Participants)
	out.ParticipantRoles = make(map[string]Role, len(s.ParticipantRoles))
	for id, role := range s.ParticipantRoles {
		out.ParticipantRoles[id] = role
	}
	if len(s.VisibleToTags) > 0 {
		out.VisibleToTags = make([]string, len(s.VisibleToTags))
		copy(out.VisibleToTags, s.VisibleToTags)
	}
	if s.ReturnTime != nil {
		rt := *s.ReturnTime
		out.ReturnTime = &rt
	}
	return out
}

// Validate checks structural invariants on a session record.
func (s Session) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	if s.Title == "" {
		return ErrMissingTitle
	}
	if s.CreatorID == "" {
		return ErrMissingCreator
	}
	if s.Duration <= 0 {
		return ErrInvalidDuration
	}
	if len(s.Participants) != len(s.ParticipantRoles) {
		return ErrRoleMapMismatch
	}
	for _, id := range s.Participants {
		if _, ok := s.ParticipantRoles[id]; !ok {
			return ErrRoleMapMismatch
		}
	}
	return nil
}
