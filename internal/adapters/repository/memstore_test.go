package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vibingbhudha77/vibex/internal/adapters/repository"
	"github.com/vibingbhudha77/vibex/internal/domain/lifecycle"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
)

func newSession(creator string) model.Session {
	return model.Session{
		Title:            "study jam",
		Kind:             model.KindVibe,
		EventTime:        time.Now().Add(-10 * time.Minute),
		Duration:         60,
		Status:           model.StatusActive,
		CreatorID:        creator,
		Participants:     []string{creator},
		ParticipantRoles: map[string]model.Role{creator: model.RoleParticipant},
	}
}

func TestMemStoreSessions(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewMemStore()

		Convey("When a session is created", func() {
			vs, err := store.CreateSession(ctx, newSession("alice"))
			So(err, ShouldBeNil)

			Convey("Then it gets an id and version 1", func() {
				So(vs.Session.ID, ShouldEqual, 1)
				So(vs.Version, ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And it can be read back", func() {
				got, err := store.GetSession(ctx, vs.Session.ID)
				So(err, ShouldBeNil)
				So(got.Session.Title, ShouldEqual, "study jam")
			})

			Convey("And the returned copy does not alias store state", func() {
				vs.Session.Participants = append(vs.Session.Participants, "mallory")
				got, err := store.GetSession(ctx, vs.Session.ID)
				So(err, ShouldBeNil)
				So(got.Session.Participants, ShouldResemble, []string{"alice"})
			})
		})

		Convey("When reading an unknown session", func() {
			_, err := store.GetSession(ctx, 404)

			Convey("Then it reports not found", func() {
				So(err, ShouldEqual, repository.ErrSessionNotFound)
			})
		})
	})
}

func TestMemStoreConditionalCommit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored session", t, func() {
		store := repository.NewMemStore()
		vs, err := store.CreateSession(ctx, newSession("alice"))
		So(err, ShouldBeNil)

		Convey("When committing with the current version", func() {
			next := vs.Session.Clone()
			next.Participants = append(next.Participants, "bob")
			next.ParticipantRoles["bob"] = model.RoleParticipant

			committed, err := store.CommitSession(ctx, vs.Session.ID, vs.Version, next)

			Convey("Then the commit lands and the version bumps", func() {
				So(err, ShouldBeNil)
				So(committed.Version, ShouldEqual, vs.Version+1)
				So(committed.Session.HasParticipant("bob"), ShouldBeTrue)
			})
		})

		Convey("When committing with a stale version", func() {
			next := vs.Session.Clone()
			next.Participants = append(next.Participants, "bob")
			next.ParticipantRoles["bob"] = model.RoleParticipant
			_, err := store.CommitSession(ctx, vs.Session.ID, vs.Version, next)
			So(err, ShouldBeNil)

			stale := vs.Session.Clone()
			stale.Participants = append(stale.Participants, "carol")
			stale.ParticipantRoles["carol"] = model.RoleParticipant
			_, err = store.CommitSession(ctx, vs.Session.ID, vs.Version, stale)

			Convey("Then the losing write is rejected, never silently merged", func() {
				So(err, ShouldEqual, repository.ErrVersionConflict)
				got, gerr := store.GetSession(ctx, vs.Session.ID)
				So(gerr, ShouldBeNil)
				So(got.Session.HasParticipant("bob"), ShouldBeTrue)
				So(got.Session.HasParticipant("carol"), ShouldBeFalse)
			})
		})

		Convey("When two writers race on the same row", func() {
			var wins, conflicts int
			var mu sync.Mutex
			var wg sync.WaitGroup
			for _, user := range []string{"bob", "carol"} {
				wg.Add(1)
				go func(user string) {
					defer wg.Done()
					next := vs.Session.Clone()
					next.Participants = append(next.Participants, user)
					next.ParticipantRoles[user] = model.RoleParticipant
					_, err := store.CommitSession(ctx, vs.Session.ID, vs.Version, next)
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						wins++
					} else {
						conflicts++
					}
				}(user)
			}
			wg.Wait()

			Convey("Then exactly one writer wins", func() {
				So(wins, ShouldEqual, 1)
				So(conflicts, ShouldEqual, 1)
			})
		})
	})
}

func TestMemStoreRatings(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewMemStore()

		Convey("When reading an unknown user's rating", func() {
			vr, err := store.GetRating(ctx, "alice")

			Convey("Then the baseline comes back at version zero", func() {
				So(err, ShouldBeNil)
				So(vr.Rating.Score, ShouldEqual, model.BaselineRating)
				So(vr.Version, ShouldEqual, 0)
			})
		})

		Convey("When committing the first rating at version zero", func() {
			vr, err := store.CommitRating(ctx, "alice", 0, model.Rating{UserID: "alice", Score: 1520, SessionCount: 1})

			Convey("Then the row is created at version 1", func() {
				So(err, ShouldBeNil)
				So(vr.Version, ShouldEqual, 1)
			})

			Convey("And a stale re-commit at version zero conflicts", func() {
				_, err := store.CommitRating(ctx, "alice", 0, model.Rating{UserID: "alice", Score: 1540})
				So(err, ShouldEqual, repository.ErrVersionConflict)
			})
		})
	})
}

func TestMemStoreVouches(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with one vouch", t, func() {
		store := repository.NewMemStore()
		v := model.Vouch{
			ID:         "v-1",
			VoucherID:  "alice",
			ReceiverID: "bob",
			SessionID:  1,
			Skill:      "Python",
			Points:     10,
			CreatedAt:  time.Now(),
		}
		So(store.CreateVouch(ctx, v), ShouldBeNil)

		Convey("Then the same tuple cannot be created twice", func() {
			dup := v
			dup.ID = "v-2"
			So(store.CreateVouch(ctx, dup), ShouldEqual, repository.ErrDuplicateVouch)
		})

		Convey("Then per-pair and per-session counts see it", func() {
			So(store.VouchesBetween(ctx, "alice", "bob"), ShouldEqual, 1)
			So(store.VouchesBetween(ctx, "bob", "alice"), ShouldEqual, 0)
			So(store.VouchesForReceiverInSession(ctx, "bob", 1), ShouldEqual, 1)
			So(store.VouchesForReceiverInSession(ctx, "bob", 2), ShouldEqual, 0)
		})

		Convey("Then history returns it", func() {
			history, err := store.VouchHistory(ctx, "bob")
			So(err, ShouldBeNil)
			So(len(history), ShouldEqual, 1)
			So(history[0].Skill, ShouldEqual, "Python")
		})

		Convey("When the vouch is rolled back", func() {
			So(store.DeleteVouch(ctx, "alice", "bob", 1), ShouldBeNil)

			Convey("Then the tuple is free again", func() {
				So(store.VouchesBetween(ctx, "alice", "bob"), ShouldEqual, 0)
				So(store.CreateVouch(ctx, v), ShouldBeNil)
			})
		})
	})
}

func TestMemStoreActiveSessionFor(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	Convey("Given a user in one live and one ended session", t, func() {
		store := repository.NewMemStore()

		live := newSession("alice")
		liveVS, err := store.CreateSession(ctx, live)
		So(err, ShouldBeNil)

		ended := newSession("alice")
		ended.EventTime = now.Add(-3 * time.Hour)
		_, err = store.CreateSession(ctx, ended)
		So(err, ShouldBeNil)

		Convey("Then only the live one counts as active membership", func() {
			id, ok := store.ActiveSessionFor(ctx, "alice", now, lifecycle.Phase)
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, liveVS.Session.ID)
		})

		Convey("Then a stranger has no active membership", func() {
			_, ok := store.ActiveSessionFor(ctx, "mallory", now, lifecycle.Phase)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMemStoreTopRatings(t *testing.T) {
	ctx := context.Background()

	Convey("Given three rated users", t, func() {
		store := repository.NewMemStore()
		_, err := store.CommitRating(ctx, "alice", 0, model.Rating{UserID: "alice", Score: 1700})
		So(err, ShouldBeNil)
		_, err = store.CommitRating(ctx, "bob", 0, model.Rating{UserID: "bob", Score: 1500})
		So(err, ShouldBeNil)
		_, err = store.CommitRating(ctx, "carol", 0, model.Rating{UserID: "carol", Score: 1700})
		So(err, ShouldBeNil)

		Convey("When asking for the top two", func() {
			entries, err := store.TopRatings(ctx, 2)
			So(err, ShouldBeNil)

			Convey("Then ties break on user id and ranks are dense", func() {
				So(len(entries), ShouldEqual, 2)
				So(entries[0].UserID, ShouldEqual, "alice")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].UserID, ShouldEqual, "carol")
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When asking with a bad limit", func() {
			_, err := store.TopRatings(ctx, 0)

			Convey("Then the limit is rejected", func() {
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})
		})
	})
}
