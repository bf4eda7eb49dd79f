package digest_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/pitchpredict/internal/domain/digest"
	"github.com/okian/pitchpredict/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func pitch(pitchType, description string, speed float64) *model.Pitch {
	p := &model.Pitch{PitchType: pitchType, Description: description, ReleaseSpeed: f(speed), Type: "S"}
	if description == "ball" {
		p.Type = "B"
	}
	return p
}

func ballInPlay(bbType string, launchSpeed, launchAngle float64) *model.Pitch {
	return &model.Pitch{
		PitchType:     "FF",
		Description:   "hit_into_play",
		Type:          "X",
		BBType:        bbType,
		LaunchSpeed:   f(launchSpeed),
		LaunchAngle:   f(launchAngle),
		EstimatedWOBA: f(0.4),
	}
}

func TestPitchData(t *testing.T) {
	Convey("Given three fastballs and two sliders", t, func() {
		pitches := model.Collection{
			pitch("FF", "ball", 95), pitch("SL", "called_strike", 85), pitch("FF", "foul", 97),
			pitch("SL", "ball", 87), pitch("FF", "swinging_strike", 96),
		}

		Convey("When digesting pitch data", func() {
			table := digest.PitchData(pitches)

			Convey("Then rows are ordered by frequency", func() {
				So(table.Keys(), ShouldResemble, []string{"FF", "SL"})
			})

			Convey("And percentages reflect usage", func() {
				ff, _ := table.Value("FF", digest.ColPercent)
				sl, _ := table.Value("SL", digest.ColPercent)
				So(ff, ShouldAlmostEqual, 60.0, 1e-9)
				So(sl, ShouldAlmostEqual, 40.0, 1e-9)
			})

			Convey("And velocity is averaged per type", func() {
				v, _ := table.Value("FF", digest.ColReleaseSpeed)
				So(v, ShouldAlmostEqual, 96.0, 1e-9)
			})

			Convey("And missing spin is NaN", func() {
				v, ok := table.Value("SL", digest.ColSpinRate)
				So(ok, ShouldBeTrue)
				So(math.IsNaN(v), ShouldBeTrue)
			})
		})
	})

	Convey("Given a single pitch type", t, func() {
		pitches := model.Collection{pitch("CU", "ball", 78), pitch("CU", "ball", 79)}

		Convey("Then usage should be 100 percent", func() {
			table := digest.PitchData(pitches)
			So(table.Len(), ShouldEqual, 1)
			v, _ := table.Value("CU", digest.ColPercent)
			So(v, ShouldEqual, 100.0)
		})
	})

	Convey("Given a pitch without a type", t, func() {
		table := digest.PitchData(model.Collection{pitch("", "ball", 90)})

		Convey("Then it is reported as UN", func() {
			So(table.Keys(), ShouldResemble, []string{"UN"})
		})
	})

	Convey("Given an empty subset", t, func() {
		table := digest.PitchData(nil)

		Convey("Then the table is empty but keeps its columns", func() {
			So(table.Empty(), ShouldBeTrue)
			So(table.Column(digest.ColCount), ShouldEqual, 0)
		})
	})
}

func TestPitchEventData(t *testing.T) {
	Convey("Given a mix of outcomes", t, func() {
		pitches := model.Collection{
			pitch("FF", "ball", 95),
			pitch("FF", "blocked_ball", 95),
			pitch("FF", "called_strike", 95),
			pitch("FF", "swinging_strike_blocked", 95),
			pitch("FF", "foul", 95),
			pitch("FF", "hit_by_pitch", 95),
			ballInPlay(digest.GroundBall, 88, -5),
		}

		Convey("When digesting event data", func() {
			table := digest.PitchEventData(pitches)

			Convey("Then descriptions are folded into categories", func() {
				n, _ := table.Value("ball", digest.ColCount)
				So(n, ShouldEqual, 2)
				n, _ = table.Value("swinging_strike", digest.ColCount)
				So(n, ShouldEqual, 1)
				n, _ = table.Value("in_play", digest.ColCount)
				So(n, ShouldEqual, 1)
			})

			Convey("And the most common category comes first", func() {
				So(table.Rows[0].Key, ShouldEqual, "ball")
			})

			Convey("And rates sum to one", func() {
				So(table.Sum(digest.ColRate), ShouldAlmostEqual, 1.0, 1e-9)
			})
		})
	})

	Convey("Given random subsets", t, func() {
		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic seed for reproducible testing
		descriptions := []string{"ball", "called_strike", "foul", "swinging_strike", "hit_into_play", "pitchout", "foul_tip", "automatic_ball"}

		Convey("Then rates always sum to one", func() {
			for round := 0; round < 30; round++ {
				pitches := make(model.Collection, 1+rng.Intn(200))
				for i := range pitches {
					pitches[i] = &model.Pitch{Description: descriptions[rng.Intn(len(descriptions))]}
				}
				table := digest.PitchEventData(pitches)
				So(table.Sum(digest.ColRate), ShouldAlmostEqual, 1.0, 1e-9)
				So(table.Sum(digest.ColCount), ShouldEqual, float64(len(pitches)))
			}
		})
	})

	Convey("Given an empty subset", t, func() {
		Convey("Then the event table is empty", func() {
			So(digest.PitchEventData(model.Collection{}).Empty(), ShouldBeTrue)
		})
	})
}

func TestBattedBallData(t *testing.T) {
	Convey("Given pitches with three balls in play", t, func() {
		pitches := model.Collection{
			pitch("FF", "ball", 95),
			pitch("SL", "called_strike", 85),
			ballInPlay(digest.GroundBall, 90, -10),
			ballInPlay(digest.FlyBall, 100, 30),
			ballInPlay(digest.FlyBall, 104, 25),
		}

		Convey("When digesting aggregated batted-ball data", func() {
			res := digest.BattedBallData(pitches)

			Convey("Then the qualifying count is the number of balls in play", func() {
				So(res.QualifyingCount, ShouldEqual, 3)
				So(res.Table.Len(), ShouldEqual, 1)
			})

			Convey("And means are taken over balls in play", func() {
				v, _ := res.Table.Value("all", digest.ColLaunchSpeed)
				So(v, ShouldAlmostEqual, 98.0, 1e-9)
				v, _ = res.Table.Value("all", digest.ColLaunchAngle)
				So(v, ShouldAlmostEqual, 15.0, 1e-9)
			})

			Convey("And hit classification rates are reported", func() {
				v, _ := res.Table.Value("all", digest.ColFlyBallPct)
				So(v, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				v, _ = res.Table.Value("all", digest.ColPopupPct)
				So(v, ShouldEqual, 0)
			})

			Convey("And hard-hit rate counts contact at 95 mph or more", func() {
				v, _ := res.Table.Value("all", digest.ColHardHitRate)
				So(v, ShouldAlmostEqual, 2.0/3.0, 1e-9)
			})
		})

		Convey("When digesting split batted-ball data", func() {
			res := digest.BattedBallDataSplit(pitches)

			Convey("Then only observed categories get a row", func() {
				So(res.QualifyingCount, ShouldEqual, 3)
				So(res.Table.Keys(), ShouldResemble, []string{digest.FlyBall, digest.GroundBall})
			})

			Convey("And metrics are computed within each category", func() {
				v, _ := res.Table.Value(digest.FlyBall, digest.ColLaunchSpeed)
				So(v, ShouldAlmostEqual, 102.0, 1e-9)
				v, _ = res.Table.Value(digest.GroundBall, digest.ColShare)
				So(v, ShouldAlmostEqual, 1.0/3.0, 1e-9)
			})

			Convey("And no row has a zero count", func() {
				for _, r := range res.Table.Rows {
					So(r.Values[res.Table.Column(digest.ColCount)], ShouldBeGreaterThan, 0)
				}
			})
		})
	})

	Convey("Given a ball in play without a classification", t, func() {
		p := ballInPlay("", 80, 10)
		p.LaunchSpeed = nil

		Convey("When splitting", func() {
			res := digest.BattedBallDataSplit(model.Collection{p})

			Convey("Then it is grouped as unknown with NaN exit velocity", func() {
				So(res.Table.Keys(), ShouldResemble, []string{digest.Unknown})
				v, _ := res.Table.Value(digest.Unknown, digest.ColLaunchSpeed)
				So(math.IsNaN(v), ShouldBeTrue)
				v, _ = res.Table.Value(digest.Unknown, digest.ColHardHitRate)
				So(math.IsNaN(v), ShouldBeTrue)
			})
		})
	})

	Convey("Given no balls in play", t, func() {
		pitches := model.Collection{pitch("FF", "ball", 95), pitch("FF", "foul", 96)}

		Convey("Then both batted-ball digests are empty with count 0", func() {
			agg := digest.BattedBallData(pitches)
			split := digest.BattedBallDataSplit(pitches)
			So(agg.QualifyingCount, ShouldEqual, 0)
			So(agg.Table.Empty(), ShouldBeTrue)
			So(split.QualifyingCount, ShouldEqual, 0)
			So(split.Table.Empty(), ShouldBeTrue)
		})
	})
}
