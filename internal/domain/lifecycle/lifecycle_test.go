package lifecycle_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vibingbhudha77/vibex/internal/domain/lifecycle"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
)

func vibeAt(start time.Time, durationMinutes int) model.Session {
	return model.Session{
		ID:               1,
		Title:            "chess on the lawn",
		Kind:             model.KindVibe,
		EventTime:        start,
		Duration:         durationMinutes,
		Status:           model.StatusActive,
		CreatorID:        "u-creator",
		Participants:     []string{"u-creator"},
		ParticipantRoles: map[string]model.Role{"u-creator": model.RoleParticipant},
	}
}

func TestPhase(t *testing.T) {
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	Convey("Given a 60 minute vibe session", t, func() {
		s := vibeAt(start, 60)

		Convey("Then before the start it is scheduled", func() {
			So(lifecycle.Phase(s, start.Add(-time.Minute)), ShouldEqual, model.PhaseScheduled)
		})

		Convey("Then inside the window it is active", func() {
			So(lifecycle.Phase(s, start), ShouldEqual, model.PhaseActive)
			So(lifecycle.Phase(s, start.Add(30*time.Minute)), ShouldEqual, model.PhaseActive)
		})

		Convey("Then with under a minute left it is ending soon", func() {
			So(lifecycle.Phase(s, start.Add(59*time.Minute+30*time.Second)), ShouldEqual, model.PhaseEndingSoon)
		})

		Convey("Then past the window it is ended", func() {
			So(lifecycle.Phase(s, start.Add(61*time.Minute)), ShouldEqual, model.PhaseEnded)
		})

		Convey("Then a persisted closed status wins over the window", func() {
			s.Status = model.StatusClosed
			So(lifecycle.Phase(s, start.Add(10*time.Minute)), ShouldEqual, model.PhaseEnded)
		})
	})

	Convey("Given a borrow session nobody answered", t, func() {
		s := vibeAt(start, 120)
		s.Kind = model.KindBorrow
		s.ParticipantRoles = map[string]model.Role{"u-creator": model.RoleSeeking}

		Convey("Then 29 minutes in it is still active", func() {
			So(lifecycle.Phase(s, start.Add(29*time.Minute)), ShouldEqual, model.PhaseActive)
		})

		Convey("Then 31 minutes in it is auto-close eligible", func() {
			So(lifecycle.Phase(s, start.Add(31*time.Minute)), ShouldEqual, model.PhaseAutoCloseEligible)
		})

		Convey("Then once a giver joined the auto-close rule is off", func() {
			s.Participants = append(s.Participants, "u-giver")
			s.ParticipantRoles["u-giver"] = model.RoleGiver
			So(lifecycle.Phase(s, start.Add(31*time.Minute)), ShouldEqual, model.PhaseActive)
		})

		Convey("Then past the full window it is ended, not auto-close eligible", func() {
			So(lifecycle.Phase(s, start.Add(121*time.Minute)), ShouldEqual, model.PhaseEnded)
		})
	})

	Convey("Given the same session and instant", t, func() {
		s := vibeAt(start, 60)
		now := start.Add(15 * time.Minute)

		Convey("Then repeated evaluation is deterministic", func() {
			first := lifecycle.Phase(s, now)
			for i := 0; i < 10; i++ {
				So(lifecycle.Phase(s, now), ShouldEqual, first)
			}
		})
	})
}

func TestJoinable(t *testing.T) {
	Convey("Given each lifecycle phase", t, func() {
		Convey("Then only active and ending-soon sessions accept joins", func() {
			So(lifecycle.Joinable(model.PhaseActive), ShouldBeTrue)
			So(lifecycle.Joinable(model.PhaseEndingSoon), ShouldBeTrue)
			So(lifecycle.Joinable(model.PhaseScheduled), ShouldBeFalse)
			So(lifecycle.Joinable(model.PhaseAutoCloseEligible), ShouldBeFalse)
			So(lifecycle.Joinable(model.PhaseEnded), ShouldBeFalse)
		})
	})
}
