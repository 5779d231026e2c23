package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/replaytune/internal/config"
	"github.com/okian/replaytune/internal/sample"
	"github.com/okian/replaytune/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		setEnv(t, map[string]string{
			"REPLAYTUNE_ADDR":                  ":8080",
			"REPLAYTUNE_QUEUE_SIZE":            "1000",
			"REPLAYTUNE_WORKER_COUNT":          "4",
			"REPLAYTUNE_WEBHOOK__MAX_ATTEMPTS": "5",
		})

		convey.Convey("Then configuration loads them", func() {
			cfg, err := config.Load()
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.Webhook.MaxAttempts, convey.ShouldEqual, 5)
		})
	})

	convey.Convey("Given an empty address", t, func() {
		setEnv(t, map[string]string{"REPLAYTUNE_ADDR": ""})

		convey.Convey("Then configuration loading fails", func() {
			cfg, err := config.Load()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given a service wired from configuration", t, func() {
		cfg := config.New()
		cfg.CatalogPath = "../data/songs.json"
		cfg.WorkerCount = 2
		cfg.QueueSize = 8

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		svc := newService(cfg, logger.NewNop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			_ = svc.Stop(stopCtx)
		}()

		srv := newHTTPServer(ctx, cfg, svc, logger.NewNop())
		convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
		convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)

		convey.Convey("When the catalog is reloaded", func() {
			err := svc.ReloadCatalog(ctx)

			convey.Convey("Then the bundled songs are available", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.GetStats().CatalogSongs, convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When a recommendation is requested over HTTP", func() {
			body, err := json.Marshal(map[string]any{
				"player_id":   sample.PlayerIDs()[0],
				"replay_data": json.RawMessage(sample.Raw()),
				"top_n":       2,
			})
			convey.So(err, convey.ShouldBeNil)

			req := httptest.NewRequest(http.MethodPost, "/recommend", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)

			convey.Convey("Then ranked songs are returned", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

				var out struct {
					Success         bool             `json:"success"`
					Recommendations []map[string]any `json:"recommendations"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &out), convey.ShouldBeNil)
				convey.So(out.Success, convey.ShouldBeTrue)
				convey.So(len(out.Recommendations), convey.ShouldEqual, 2)
			})
		})
	})
}

func TestWatchReload(t *testing.T) {
	convey.Convey("Given a running reload watcher", t, func() {
		cfg := config.New()
		cfg.CatalogPath = "../data/songs.json"
		svc := newService(cfg, logger.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			watchReload(ctx, svc, logger.NewNop())
			close(done)
		}()

		convey.Convey("Then it stops when the context is cancelled", func() {
			cancel()
			select {
			case <-done:
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(2 * time.Second):
				convey.So("watcher did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns without panicking", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainExitsOnBadConfig(t *testing.T) {
	convey.Convey("Given an unreadable config file", t, func() {
		setEnv(t, map[string]string{config.ConfigPathEnv: os.DevNull + ".missing"})

		convey.Convey("Then run reports the error instead of serving", func() {
			convey.So(run(), convey.ShouldNotBeNil)
		})
	})
}
