package rating_test

import (
	"testing"

	rating "github.com/Silverfoe/trueskill-public/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEnvDefaults(t *testing.T) {
	Convey("Given the default environment", t, func() {
		env := rating.DefaultEnv()

		Convey("Then the conventional constants are set", func() {
			So(env.Mu0, ShouldEqual, 25.0)
			So(env.Sigma0, ShouldAlmostEqual, 25.0/3.0)
			So(env.Beta, ShouldAlmostEqual, 25.0/6.0)
			So(env.Tau, ShouldAlmostEqual, 25.0/300.0)
			So(env.DrawProbability, ShouldEqual, 0.0)
		})

		Convey("And it validates", func() {
			So(env.Validate(), ShouldBeNil)
		})

		Convey("And the prior mirrors mu0/sigma0", func() {
			prior := env.Prior()
			So(prior.Mu, ShouldEqual, env.Mu0)
			So(prior.Sigma, ShouldEqual, env.Sigma0)
		})
	})
}

func TestEnvValidate(t *testing.T) {
	Convey("Given broken environments", t, func() {
		base := rating.DefaultEnv()

		Convey("When sigma0 is non-positive", func() {
			env := base
			env.Sigma0 = 0
			So(env.Validate(), ShouldWrap, rating.ErrInvalidEnv)
		})

		Convey("When beta is non-positive", func() {
			env := base
			env.Beta = -1
			So(env.Validate(), ShouldWrap, rating.ErrInvalidEnv)
		})

		Convey("When draw probability is out of range", func() {
			env := base
			env.DrawProbability = 1.0
			So(env.Validate(), ShouldWrap, rating.ErrInvalidEnv)
		})
	})
}

func TestDerivedMetrics(t *testing.T) {
	Convey("Given a rating and the default environment", t, func() {
		env := rating.DefaultEnv()

		Convey("Then conservative rating is mu minus three sigma", func() {
			r := rating.Rating{Mu: 30, Sigma: 5}
			So(r.Conservative(), ShouldEqual, 15.0)
		})

		Convey("Then a prior-shaped rating has zero confidence", func() {
			So(env.Confidence(env.Prior()), ShouldEqual, 0.0)
		})

		Convey("Then a tightened rating gains confidence", func() {
			half := rating.Rating{Mu: 25, Sigma: env.Sigma0 / 2}
			So(env.Confidence(half), ShouldAlmostEqual, 75.0)
		})

		Convey("Then a fully certain rating reaches 100", func() {
			So(env.Confidence(rating.Rating{Mu: 25, Sigma: 0}), ShouldEqual, 100.0)
		})

		Convey("Then sigma above the prior clamps to zero instead of going negative", func() {
			wide := rating.Rating{Mu: 25, Sigma: env.Sigma0 * 1.5}
			So(env.Confidence(wide), ShouldEqual, 0.0)
		})
	})
}
