package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/replaytune/internal/config"
	"github.com/okian/replaytune/internal/domain/category"
	"github.com/okian/replaytune/internal/domain/matching"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.CatalogPath, convey.ShouldEqual, "data/songs.json")
			convey.So(cfg.DefaultTopN, convey.ShouldEqual, 3)
			convey.So(cfg.MaxTopN, convey.ShouldEqual, 50)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 1<<20)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.Webhook.MaxAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.Webhook.Timeout, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then domain tuning round-trips to the stock values", func() {
			convey.So(cfg.CategoryThresholds(), convey.ShouldResemble, category.DefaultThresholds())
			convey.So(cfg.MatchingWeights(), convey.ShouldResemble, matching.DefaultWeights())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the catalog path is empty", func() {
			cfg.CatalogPath = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the default top_n exceeds the cap", func() {
			cfg.DefaultTopN = 60
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a threshold band is inverted", func() {
			cfg.Thresholds.Teamwork = config.Band{High: 0.1, Low: 0.2}
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, category.ErrInvalidThresholds), convey.ShouldBeTrue)
		})

		convey.Convey("When a weight is negative", func() {
			cfg.Weights.Mood = -1
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, matching.ErrInvalidWeights), convey.ShouldBeTrue)
		})

		convey.Convey("When webhook attempts are zero", func() {
			cfg.Webhook.MaxAttempts = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
