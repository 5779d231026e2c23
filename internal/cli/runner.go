package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/okian/replaytune/internal/adapters/repository"
	service "github.com/okian/replaytune/internal/app"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/internal/sample"
	"github.com/okian/replaytune/pkg/logger"
)

// Run produces the recommendation described by cfg and writes it to stdout
// as indented JSON.
func Run(ctx context.Context, cfg Config, stdout io.Writer, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	raw, err := readReplay(cfg.ReplayFile)
	if err != nil {
		return err
	}

	var out []byte
	if cfg.Remote() {
		log.Debug(ctx, "requesting recommendation", logger.String("url", cfg.BaseURL))
		out, err = fetchRecommendation(ctx, cfg, raw)
	} else {
		log.Debug(ctx, "computing recommendation locally", logger.String("catalog", cfg.CatalogPath))
		out, err = computeRecommendation(ctx, cfg, raw, log)
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "  "); err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(stdout)
	return err
}

// readReplay returns the replay file contents, or the embedded sample when
// path is empty.
func readReplay(path string) ([]byte, error) {
	if path == "" {
		return sample.Raw(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("read replay %s: not valid JSON", path)
	}
	return raw, nil
}

func computeRecommendation(ctx context.Context, cfg Config, raw []byte, log logger.Logger) ([]byte, error) {
	var game model.GameRecord
	if err := json.Unmarshal(raw, &game); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}

	store := repository.NewCatalogStore(
		repository.NewLoader(cfg.CatalogPath, repository.WithLoaderLogger(log)),
		repository.WithLogger(log),
	)
	svc := service.New(
		service.WithLogger(log),
		service.WithCatalog(store),
		service.WithTopN(cfg.TopN, max(cfg.TopN, 1)),
	)

	topN := cfg.TopN
	rec, err := svc.Recommend(ctx, service.RecommendRequest{
		PlayerID: cfg.PlayerID,
		Replay:   &game,
		TopN:     &topN,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}
