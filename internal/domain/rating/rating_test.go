package rating_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vibingbhudha77/vibex/internal/domain/rating"
)

func TestKFactor(t *testing.T) {
	Convey("Given users with different experience levels", t, func() {
		Convey("Then new users get the high volatility factor", func() {
			So(rating.KFactor(0), ShouldEqual, 40)
			So(rating.KFactor(5), ShouldEqual, 40)
			So(rating.KFactor(9), ShouldEqual, 40)
		})

		Convey("Then established users get the medium factor", func() {
			So(rating.KFactor(10), ShouldEqual, 20)
			So(rating.KFactor(25), ShouldEqual, 20)
			So(rating.KFactor(49), ShouldEqual, 20)
		})

		Convey("Then veterans get the low factor", func() {
			So(rating.KFactor(50), ShouldEqual, 10)
			So(rating.KFactor(100), ShouldEqual, 10)
		})
	})
}

func TestExpected(t *testing.T) {
	Convey("Given the logistic expectation curve", t, func() {
		Convey("Then the baseline rating expects exactly half", func() {
			So(rating.Expected(1500), ShouldEqual, 0.5)
		})

		Convey("Then a 1900 rating expects roughly 0.91", func() {
			So(rating.Expected(1900), ShouldAlmostEqual, 0.9091, 1e-3)
		})

		Convey("Then the curve is monotone increasing", func() {
			So(rating.Expected(1200), ShouldBeLessThan, rating.Expected(1500))
			So(rating.Expected(1500), ShouldBeLessThan, rating.Expected(1800))
		})
	})
}

func TestNewRating(t *testing.T) {
	Convey("Given a new user at the baseline", t, func() {
		Convey("When they collect every possible vouch", func() {
			// actual = 2/2 = 1.0, expected = 0.5, delta = 40 * 0.5
			got := rating.NewRating(1500, 5, 2, 3)

			Convey("Then they gain the full K/2", func() {
				So(got, ShouldEqual, 1520)
			})
		})

		Convey("When they collect no vouches", func() {
			got := rating.NewRating(1500, 5, 0, 3)

			Convey("Then they lose K * expected", func() {
				So(got, ShouldEqual, 1480)
			})
		})

		Convey("When the session was solo", func() {
			got := rating.NewRating(1500, 5, 0, 1)

			Convey("Then actual is zero and the rating drops", func() {
				So(got, ShouldEqual, 1480)
			})
		})
	})

	Convey("Given a veteran with a high rating", t, func() {
		Convey("When they receive no vouches", func() {
			got := rating.NewRating(1900, 100, 0, 5)

			Convey("Then the loss is damped by the low K factor", func() {
				// 1900 - 10*0.9091 = 1890.9 -> 1891
				So(got, ShouldEqual, 1891)
			})
		})
	})

	Convey("Given a rating that has already gone negative", t, func() {
		Convey("When the user under-performs again", func() {
			got := rating.NewRating(-5, 0, 0, 10)

			Convey("Then the result stays negative, never clamped to zero", func() {
				So(got, ShouldEqual, -5)
			})
		})
	})
}

func TestTierFor(t *testing.T) {
	Convey("Given the tier threshold table", t, func() {
		cases := []struct {
			score int
			want  string
		}{
			{-50, "Newbie"},
			{0, "Newbie"},
			{1199, "Newbie"},
			{1200, "Contributor"},
			{1399, "Contributor"},
			{1400, "Specialist"},
			{1600, "Expert"},
			{1900, "Master"},
			{2199, "Master"},
			{2200, "Grandmaster"},
			{5000, "Grandmaster"},
		}

		for _, c := range cases {
			Convey(fmt.Sprintf("Then a score of %d classifies as %s", c.score, c.want), func() {
				So(rating.TierFor(c.score).Name, ShouldEqual, c.want)
			})
		}
	})
}

func TestProgressToNextTier(t *testing.T) {
	Convey("Given progression between bands", t, func() {
		Convey("Then the midpoint of Contributor reads 50", func() {
			So(rating.ProgressToNextTier(1300), ShouldEqual, 50)
		})

		Convey("Then a band floor reads 0", func() {
			So(rating.ProgressToNextTier(1200), ShouldEqual, 0)
			So(rating.ProgressToNextTier(1400), ShouldEqual, 0)
		})

		Convey("Then the top band is always 100", func() {
			So(rating.ProgressToNextTier(2200), ShouldEqual, 100)
			So(rating.ProgressToNextTier(9000), ShouldEqual, 100)
		})

		Convey("Then a negative score clamps to 0", func() {
			So(rating.ProgressToNextTier(-100), ShouldEqual, 0)
		})
	})
}

func TestAllTiers(t *testing.T) {
	Convey("Given the full tier table", t, func() {
		all := rating.AllTiers()

		Convey("Then it holds six bands with strictly increasing floors", func() {
			So(len(all), ShouldEqual, 6)
			for i := 1; i < len(all); i++ {
				So(all[i].MinRating, ShouldBeGreaterThan, all[i-1].MinRating)
			}
		})
	})
}
