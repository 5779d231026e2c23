package telemetry_test

import (
	"testing"

	"github.com/okian/replaytune/internal/domain/extract"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/domain/telemetry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculate(t *testing.T) {
	Convey("Given ZwyxerS from the sample replay", t, func() {
		e := extract.Extracted{
			Player: model.PlayerRecord{
				ID: "ce45140fcd644755b01660aa2dc6977b", Goals: 2, Saves: 1, Assists: 0, ShootingPercentage: 50,
				Movement: model.Movement{TotalDistance: 539619, TimeSupersonicSpeedPercent: 6.2792473},
			},
			Team:     model.TeamRecord{Goals: 5},
			Opponent: model.TeamRecord{Goals: 4},
			Duration: 451,
			Overtime: true,
		}

		Convey("When metrics are calculated", func() {
			m := telemetry.Calculate(e)

			Convey("Then they match the formulas", func() {
				So(m.Performance, ShouldEqual, 300)
				So(m.Intensity, ShouldAlmostEqual, 539619.0/451+6.2792473*2, 1e-9)
				So(m.Intensity, ShouldAlmostEqual, 1209.05, 0.01)
				So(m.Teamwork, ShouldEqual, 0)
				So(m.Outcome, ShouldResemble, model.Outcome{
					WinStatus: model.StatusWin, ScoreDifferential: 1, AbsScoreDifferential: 1,
				})
			})
		})
	})
}

func TestEdgeCases(t *testing.T) {
	Convey("Given degenerate inputs", t, func() {
		Convey("When the team scored no goals but the player has assists", func() {
			tw := telemetry.Teamwork(model.PlayerRecord{Assists: 3}, model.TeamRecord{Goals: 0})

			Convey("Then teamwork is exactly zero", func() {
				So(tw, ShouldEqual, 0.0)
			})
		})

		Convey("When the duration is zero", func() {
			p := model.PlayerRecord{Movement: model.Movement{TotalDistance: 1000, TimeSupersonicSpeedPercent: 50}}

			Convey("Then intensity is exactly zero", func() {
				So(telemetry.Intensity(p, 0), ShouldEqual, 0.0)
			})
		})

		Convey("When assists exceed team goals", func() {
			tw := telemetry.Teamwork(model.PlayerRecord{Assists: 3}, model.TeamRecord{Goals: 2})

			Convey("Then teamwork can exceed one", func() {
				So(tw, ShouldEqual, 1.5)
			})
		})
	})
}

func TestGameOutcome(t *testing.T) {
	Convey("Given team scores", t, func() {
		Convey("Then a deficit is a loss with a positive absolute differential", func() {
			o := telemetry.GameOutcome(model.TeamRecord{Goals: 1}, model.TeamRecord{Goals: 4})
			So(o.WinStatus, ShouldEqual, model.StatusLoss)
			So(o.ScoreDifferential, ShouldEqual, -3)
			So(o.AbsScoreDifferential, ShouldEqual, 3)
		})

		Convey("Then equal scores are a draw", func() {
			o := telemetry.GameOutcome(model.TeamRecord{Goals: 2}, model.TeamRecord{Goals: 2})
			So(o.WinStatus, ShouldEqual, model.StatusDraw)
			So(o.AbsScoreDifferential, ShouldEqual, 0)
		})
	})
}
