package rules_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/domain/rules"
	. "github.com/smartystreets/goconvey/convey"
)

func input(intensity, performance, teamwork model.Level, closeness model.Closeness, status model.WinStatus) rules.Input {
	return rules.Input{
		Categories: model.CategorySet{
			Intensity:   intensity,
			Performance: performance,
			Teamwork:    teamwork,
			Closeness:   closeness,
		},
		WinStatus: status,
	}
}

func TestApply(t *testing.T) {
	Convey("Given a rule engine", t, func() {
		e := rules.New()

		Convey("When a medium performer wins in overtime", func() {
			p := e.Apply(input(model.LevelMedium, model.LevelMedium, model.LevelLow, model.ClosenessVeryClose, model.StatusWin))

			Convey("Then the profile matches the rule table", func() {
				So(p.BPM.Label, ShouldEqual, "Medium (110-140)")
				So(p.Energy, ShouldEqual, model.LevelMedium)
				So(p.Moods.Items(), ShouldResemble, []string{"Focused", "Tense", "Dramatic", "Clutch"})
				So(p.Themes.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a high performer wins comfortably with high teamwork", func() {
			p := e.Apply(input(model.LevelHigh, model.LevelHigh, model.LevelHigh, model.ClosenessNotClose, model.StatusWin))

			Convey("Then victory themes come before collaboration", func() {
				So(p.BPM, ShouldResemble, model.BandHigh)
				So(p.Energy, ShouldEqual, model.LevelHigh)
				So(p.Themes.Items(), ShouldResemble, []string{"Victory", "Collaborative"})
				So(p.Moods.Items(), ShouldResemble, []string{"Triumphant", "Uplifting"})
			})
		})

		Convey("When a high performer loses", func() {
			p := e.Apply(input(model.LevelLow, model.LevelHigh, model.LevelMedium, model.ClosenessVeryClose, model.StatusLoss))

			Convey("Then the mood is energetic and heartbroken", func() {
				So(p.BPM, ShouldResemble, model.BandLow)
				So(p.Moods.Items(), ShouldResemble, []string{"Energetic", "Tense", "Dramatic", "Heartbreak"})
				So(p.Themes.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a low performer with high teamwork loses by two", func() {
			p := e.Apply(input(model.LevelLow, model.LevelLow, model.LevelHigh, model.ClosenessModerately, model.StatusLoss))

			Convey("Then teamwork raises energy to Medium", func() {
				So(p.Energy, ShouldEqual, model.LevelMedium)
				So(p.Moods.Items(), ShouldResemble, []string{"Reflective", "Uplifting", "Suspenseful"})
				So(p.Themes.Items(), ShouldResemble, []string{"Collaborative"})
			})
		})

		Convey("When a low performer draws", func() {
			p := e.Apply(input(model.LevelLow, model.LevelLow, model.LevelLow, model.ClosenessVeryClose, model.StatusDraw))

			Convey("Then the mood is neutral and no clutch or heartbreak is added", func() {
				So(p.Energy, ShouldEqual, model.LevelLow)
				So(p.Moods.Items(), ShouldResemble, []string{"Neutral", "Tense", "Dramatic"})
			})
		})

		Convey("When high teamwork meets high performance", func() {
			p := e.Apply(input(model.LevelMedium, model.LevelHigh, model.LevelHigh, model.ClosenessNotClose, model.StatusDraw))

			Convey("Then the energy floor never lowers High", func() {
				So(p.Energy, ShouldEqual, model.LevelHigh)
			})
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given every category combination", t, func() {
		e := rules.New()
		levels := []model.Level{model.LevelLow, model.LevelMedium, model.LevelHigh}
		closeness := []model.Closeness{model.ClosenessVeryClose, model.ClosenessModerately, model.ClosenessNotClose}
		statuses := []model.WinStatus{model.StatusWin, model.StatusLoss, model.StatusDraw}

		Convey("Then repeated application is byte-identical and duplicate-free", func() {
			for _, i := range levels {
				for _, p := range levels {
					for _, tw := range levels {
						for _, c := range closeness {
							for _, s := range statuses {
								in := input(i, p, tw, c, s)
								a, err := json.Marshal(e.Apply(in))
								So(err, ShouldBeNil)
								b, err := json.Marshal(e.Apply(in))
								So(err, ShouldBeNil)
								So(string(a), ShouldEqual, string(b))

								prof := e.Apply(in)
								So(prof.Energy, ShouldNotBeEmpty)
								So(len(prof.Moods.Items()), ShouldEqual, prof.Moods.Len())
								seen := map[string]bool{}
								for _, m := range prof.Moods.Items() {
									So(seen[m], ShouldBeFalse)
									seen[m] = true
								}
							}
						}
					}
				}
			}
		})
	})
}
