package rating_test

import (
	"testing"

	rating "github.com/Silverfoe/trueskill-public/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPredictMatch(t *testing.T) {
	Convey("Given the default environment", t, func() {
		env := rating.DefaultEnv()

		Convey("When both sides have identical aggregates", func() {
			a := []rating.Rating{{Mu: 25, Sigma: 5}}
			b := []rating.Rating{{Mu: 25, Sigma: 5}}

			pred, err := rating.PredictMatch(env, a, b)

			Convey("Then the result is exactly a coin flip", func() {
				So(err, ShouldBeNil)
				So(pred.WinA, ShouldEqual, 0.5)
				So(pred.WinB, ShouldEqual, 0.5)
				So(pred.ConfidencePercent, ShouldEqual, 0.0)
			})
		})

		Convey("When one side is clearly stronger", func() {
			a := []rating.Rating{{Mu: 40, Sigma: 2}}
			b := []rating.Rating{{Mu: 20, Sigma: 2}}

			pred, err := rating.PredictMatch(env, a, b)

			Convey("Then it is favored and the forecast is decisive", func() {
				So(err, ShouldBeNil)
				So(pred.WinA, ShouldBeGreaterThan, 0.9)
				So(pred.ConfidencePercent, ShouldBeGreaterThan, 80.0)
			})
		})

		Convey("Then probabilities are exact complements bit for bit", func() {
			a := []rating.Rating{{Mu: 31.7, Sigma: 4.2}, {Mu: 22.1, Sigma: 7.9}}
			b := []rating.Rating{{Mu: 28.4, Sigma: 3.3}, {Mu: 19.9, Sigma: 6.1}}

			pred, err := rating.PredictMatch(env, a, b)
			So(err, ShouldBeNil)
			So(pred.WinB, ShouldEqual, 1.0-pred.WinA)
		})

		Convey("Then identical inputs give identical outputs", func() {
			a := []rating.Rating{{Mu: 33, Sigma: 6}}
			b := []rating.Rating{{Mu: 27, Sigma: 4}, {Mu: 24, Sigma: 5}}

			first, err1 := rating.PredictMatch(env, a, b)
			second, err2 := rating.PredictMatch(env, a, b)
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(second, ShouldResemble, first)
		})
	})
}

// Reference scenario: one strong team against a prior-shaped team plus a
// precise weak one, with the conventional beta.
func TestPredictMatchReferenceScenario(t *testing.T) {
	Convey("Given teams X(30,5), Y(prior), Z(20,4)", t, func() {
		env := rating.DefaultEnv()
		x := []rating.Rating{{Mu: 30, Sigma: 5}}
		yz := []rating.Rating{env.Prior(), {Mu: 20, Sigma: 4}}

		pred, err := rating.PredictMatch(env, x, yz)

		Convey("Then X's win probability lands near 0.12", func() {
			So(err, ShouldBeNil)
			So(pred.WinA, ShouldAlmostEqual, 0.1198, 0.001)
			So(pred.WinB, ShouldAlmostEqual, 0.8802, 0.001)
		})
	})
}

func TestNormCDF(t *testing.T) {
	Convey("Given the standard normal CDF", t, func() {
		So(rating.NormCDF(0), ShouldEqual, 0.5)
		So(rating.NormCDF(1.96), ShouldAlmostEqual, 0.975, 0.001)
		So(rating.NormCDF(-1.96), ShouldAlmostEqual, 0.025, 0.001)

		Convey("And its inverse round-trips", func() {
			for _, p := range []float64{0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
				So(rating.NormCDF(rating.NormPPF(p)), ShouldAlmostEqual, p, 1e-6)
			}
		})
	})
}
