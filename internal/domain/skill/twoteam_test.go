package skill_test

import (
	"context"
	"testing"

	rating "github.com/Silverfoe/trueskill-public/internal/domain/rating"
	skill "github.com/Silverfoe/trueskill-public/internal/domain/skill"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTwoTeamRate(t *testing.T) {
	Convey("Given the two-team updater and the default environment", t, func() {
		env := rating.DefaultEnv()
		rater := skill.NewTwoTeam()
		ctx := context.Background()

		Convey("When an alliance of equals wins", func() {
			a := []rating.Rating{env.Prior(), env.Prior(), env.Prior()}
			b := []rating.Rating{env.Prior(), env.Prior(), env.Prior()}

			newA, newB, err := rater.Rate(ctx, env, a, b, skill.AWins)
			So(err, ShouldBeNil)

			Convey("Then winners gain mu and losers lose it", func() {
				for i := range newA {
					So(newA[i].Mu, ShouldBeGreaterThan, a[i].Mu)
					So(newB[i].Mu, ShouldBeLessThan, b[i].Mu)
				}
			})

			Convey("And every sigma shrinks from the prior", func() {
				for i := range newA {
					So(newA[i].Sigma, ShouldBeLessThan, a[i].Sigma)
					So(newA[i].Sigma, ShouldBeGreaterThan, 0.0)
					So(newB[i].Sigma, ShouldBeLessThan, b[i].Sigma)
					So(newB[i].Sigma, ShouldBeGreaterThan, 0.0)
				}
			})

			Convey("And the update is symmetric across sides", func() {
				So(newA[0].Mu-a[0].Mu, ShouldAlmostEqual, b[0].Mu-newB[0].Mu, 1e-9)
			})
		})

		Convey("When the favored side wins", func() {
			strong := []rating.Rating{{Mu: 35, Sigma: 3}}
			weak := []rating.Rating{{Mu: 20, Sigma: 3}}

			newStrong, _, err := rater.Rate(ctx, env, strong, weak, skill.AWins)
			So(err, ShouldBeNil)

			Convey("Then its mu barely moves", func() {
				So(newStrong[0].Mu-strong[0].Mu, ShouldBeLessThan, 0.5)
				So(newStrong[0].Mu, ShouldBeGreaterThanOrEqualTo, strong[0].Mu)
			})
		})

		Convey("When the underdog wins", func() {
			strong := []rating.Rating{{Mu: 35, Sigma: 3}}
			weak := []rating.Rating{{Mu: 20, Sigma: 3}}

			_, newWeak, err := rater.Rate(ctx, env, strong, weak, skill.BWins)
			So(err, ShouldBeNil)

			Convey("Then the upset moves it substantially", func() {
				So(newWeak[0].Mu-weak[0].Mu, ShouldBeGreaterThan, 1.0)
			})
		})

		Convey("When equals draw", func() {
			a := []rating.Rating{env.Prior()}
			b := []rating.Rating{env.Prior()}

			newA, newB, err := rater.Rate(ctx, env, a, b, skill.Draw)
			So(err, ShouldBeNil)

			Convey("Then mu stays put for both", func() {
				So(newA[0].Mu, ShouldAlmostEqual, a[0].Mu, 1e-9)
				So(newB[0].Mu, ShouldAlmostEqual, b[0].Mu, 1e-9)
			})

			Convey("And uncertainty still shrinks", func() {
				So(newA[0].Sigma, ShouldBeLessThan, a[0].Sigma)
				So(newB[0].Sigma, ShouldBeLessThan, b[0].Sigma)
			})
		})

		Convey("When mismatched sides draw", func() {
			strong := []rating.Rating{{Mu: 35, Sigma: 3}}
			weak := []rating.Rating{{Mu: 20, Sigma: 3}}

			newStrong, newWeak, err := rater.Rate(ctx, env, strong, weak, skill.Draw)
			So(err, ShouldBeNil)

			Convey("Then the draw pulls them toward each other", func() {
				So(newStrong[0].Mu, ShouldBeLessThan, strong[0].Mu)
				So(newWeak[0].Mu, ShouldBeGreaterThan, weak[0].Mu)
			})
		})

		Convey("When an alliance is empty", func() {
			_, _, err := rater.Rate(ctx, env, nil, []rating.Rating{env.Prior()}, skill.AWins)

			Convey("Then the update is rejected", func() {
				So(err, ShouldWrap, skill.ErrEmptyAlliance)
			})
		})

		Convey("When inputs are shared slices", func() {
			a := []rating.Rating{env.Prior()}
			b := []rating.Rating{env.Prior()}
			before := a[0]

			_, _, err := rater.Rate(ctx, env, a, b, skill.AWins)
			So(err, ShouldBeNil)

			Convey("Then the inputs are not mutated", func() {
				So(a[0], ShouldResemble, before)
			})
		})

		Convey("When alliance sizes differ", func() {
			pair := []rating.Rating{env.Prior(), env.Prior()}
			solo := []rating.Rating{env.Prior()}

			newPair, newSolo, err := rater.Rate(ctx, env, pair, solo, skill.BWins)
			So(err, ShouldBeNil)

			Convey("Then aggregates sum over every member", func() {
				// The pair's combined mean doubles its expected
				// performance, so the solo win is a big upset.
				So(newSolo[0].Mu-solo[0].Mu, ShouldBeGreaterThan, 1.0)
				So(newPair[0].Mu, ShouldBeLessThan, pair[0].Mu)
				So(newPair[0].Mu, ShouldAlmostEqual, newPair[1].Mu, 1e-9)
			})
		})

		Convey("When uncertainty differs inside one alliance", func() {
			certain := rating.Rating{Mu: 25, Sigma: 2}
			unsure := rating.Rating{Mu: 25, Sigma: 8}
			a := []rating.Rating{certain, unsure}
			b := []rating.Rating{{Mu: 25, Sigma: 5}, {Mu: 25, Sigma: 5}}

			newA, _, err := rater.Rate(ctx, env, a, b, skill.AWins)
			So(err, ShouldBeNil)

			Convey("Then the less certain member absorbs more of the surprise", func() {
				So(newA[1].Mu-unsure.Mu, ShouldBeGreaterThan, newA[0].Mu-certain.Mu)
			})
		})
	})
}

func TestTwoTeamDrawProbability(t *testing.T) {
	Convey("Given an environment that allows draws", t, func() {
		env := rating.DefaultEnv()
		env.DrawProbability = 0.10
		rater := skill.NewTwoTeam()
		ctx := context.Background()

		Convey("When equals draw under a positive margin", func() {
			a := []rating.Rating{env.Prior()}
			b := []rating.Rating{env.Prior()}

			newA, newB, err := rater.Rate(ctx, env, a, b, skill.Draw)
			So(err, ShouldBeNil)

			Convey("Then the result stays symmetric and tighter", func() {
				So(newA[0].Mu, ShouldAlmostEqual, newB[0].Mu, 1e-9)
				So(newA[0].Sigma, ShouldBeLessThan, a[0].Sigma)
			})
		})
	})
}
