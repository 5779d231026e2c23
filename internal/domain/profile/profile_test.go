package profile_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/okian/replaytune/internal/domain/category"
	"github.com/okian/replaytune/internal/domain/extract"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/domain/profile"
	"github.com/okian/replaytune/internal/sample"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given the sample replay and a default builder", t, func() {
		game, err := sample.Replay()
		So(err, ShouldBeNil)
		b := profile.New()

		Convey("When computing the overtime MVP", func() {
			r, err := b.Compute(game, sample.PlayerZwyxerS)

			Convey("Then the metrics are rounded for output", func() {
				So(err, ShouldBeNil)
				So(r.PlayerName, ShouldEqual, "ZwyxerS")
				So(r.Metrics.IntensityScore, ShouldEqual, 1209.05)
				So(r.Metrics.PerformanceScore, ShouldEqual, 300)
				So(r.Metrics.TeamworkFactor, ShouldEqual, 0)
				So(r.Metrics.GameOutcome, ShouldResemble, model.Outcome{
					WinStatus: model.StatusWin, ScoreDifferential: 1, AbsScoreDifferential: 1,
				})
				So(r.Raw.Intensity, ShouldAlmostEqual, 539619.0/451+6.2792473*2, 1e-9)
			})

			Convey("Then the profile reflects a clutch win", func() {
				So(r.Categories, ShouldResemble, model.CategorySet{
					Intensity:   model.LevelMedium,
					Performance: model.LevelHigh,
					Teamwork:    model.LevelLow,
					Closeness:   model.ClosenessVeryClose,
				})
				p := r.DesiredSongProfile
				So(p.BPM.Label, ShouldEqual, "Medium (110-140)")
				So(p.Energy, ShouldEqual, model.LevelHigh)
				So(p.Moods.Items(), ShouldResemble, []string{"Triumphant", "Tense", "Dramatic", "Clutch"})
				So(p.Themes.Items(), ShouldResemble, []string{"Victory"})
			})
		})

		Convey("When computing the blue playmaker", func() {
			r, err := b.Compute(game, sample.PlayerSideSwiper420e)

			Convey("Then teamwork and the overtime loss shape the profile", func() {
				So(err, ShouldBeNil)
				So(r.Metrics.TeamworkFactor, ShouldEqual, 0.5)
				So(r.Categories.Teamwork, ShouldEqual, model.LevelHigh)
				So(r.Metrics.GameOutcome.WinStatus, ShouldEqual, model.StatusLoss)
				So(r.DesiredSongProfile.Energy, ShouldEqual, model.LevelMedium)
				So(r.DesiredSongProfile.Moods.Items(), ShouldResemble,
					[]string{"Focused", "Uplifting", "Tense", "Dramatic", "Heartbreak"})
				So(r.DesiredSongProfile.Themes.Items(), ShouldResemble, []string{"Collaborative"})
			})
		})

		Convey("When computing a scoreless player on the losing side", func() {
			r, err := b.Compute(game, sample.PlayerSohumV10)

			Convey("Then the profile is reflective and low energy", func() {
				So(err, ShouldBeNil)
				So(r.Categories.Performance, ShouldEqual, model.LevelLow)
				So(r.DesiredSongProfile.Energy, ShouldEqual, model.LevelLow)
				So(r.DesiredSongProfile.Moods.Items(), ShouldResemble,
					[]string{"Reflective", "Tense", "Dramatic", "Heartbreak"})
			})
		})

		Convey("When the player is not in the replay", func() {
			_, err := b.Compute(game, "nobody")

			Convey("Then ErrPlayerNotFound is returned", func() {
				So(errors.Is(err, extract.ErrPlayerNotFound), ShouldBeTrue)
			})
		})

		Convey("When the replay has no duration", func() {
			game.Duration = nil
			_, err := b.Compute(game, sample.PlayerZwyxerS)

			Convey("Then ErrMissingDuration is returned", func() {
				So(errors.Is(err, extract.ErrMissingDuration), ShouldBeTrue)
			})
		})

		Convey("When the report is encoded", func() {
			r, err := b.Compute(game, sample.PlayerZwyxerS)
			So(err, ShouldBeNil)
			raw, err := json.Marshal(r)
			So(err, ShouldBeNil)

			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			Convey("Then it has the report shape", func() {
				So(doc, ShouldContainKey, "player_name")
				So(doc, ShouldContainKey, "metrics")
				So(doc, ShouldContainKey, "categories")
				So(doc, ShouldContainKey, "desired_song_profile")
				So(doc, ShouldNotContainKey, "Raw")

				metrics := doc["metrics"].(map[string]any)
				So(metrics, ShouldContainKey, "game_outcome")
				desired := doc["desired_song_profile"].(map[string]any)
				So(desired["bpm"], ShouldEqual, "Medium (110-140)")
				So(desired["energy"], ShouldEqual, "High")
				So(desired["moods"], ShouldResemble, []any{"Triumphant", "Tense", "Dramatic", "Clutch"})
				cats := doc["categories"].(map[string]any)
				So(cats["closeness"], ShouldEqual, "Very Close / Overtime")
			})
		})
	})
}

func TestCustomCategorizer(t *testing.T) {
	Convey("Given a builder with a stricter performance band", t, func() {
		game, err := sample.Replay()
		So(err, ShouldBeNil)

		th := category.DefaultThresholds()
		th.Performance = category.Band{High: 400, Low: 100}
		b := profile.New(profile.WithCategorizer(category.New(category.WithThresholds(th))))

		Convey("Then the MVP drops to a medium performer", func() {
			r, err := b.Compute(game, sample.PlayerZwyxerS)
			So(err, ShouldBeNil)
			So(r.Categories.Performance, ShouldEqual, model.LevelMedium)
			So(r.DesiredSongProfile.Energy, ShouldEqual, model.LevelMedium)
			So(r.DesiredSongProfile.Moods.Items(), ShouldResemble, []string{"Focused", "Tense", "Dramatic", "Clutch"})
			So(r.DesiredSongProfile.Themes.Len(), ShouldEqual, 0)
		})
	})
}
