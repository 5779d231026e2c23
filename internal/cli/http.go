package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// maxResponseBytes bounds how much of a server response is read.
const maxResponseBytes = 8 << 20

// ErrServer wraps a non-2xx answer from the recommendation server.
var ErrServer = errors.New("server error")

type recommendBody struct {
	PlayerID   string          `json:"player_id"`
	ReplayData json.RawMessage `json:"replay_data"`
	TopN       int             `json:"top_n"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// fetchRecommendation POSTs the replay to the server's /recommend endpoint
// and returns the raw response body.
func fetchRecommendation(ctx context.Context, cfg Config, raw []byte) ([]byte, error) {
	payload, err := json.Marshal(recommendBody{PlayerID: cfg.PlayerID, ReplayData: raw, TopN: cfg.TopN})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var eb errorBody
		if jerr := json.Unmarshal(body, &eb); jerr == nil && eb.Error != "" {
			return nil, fmt.Errorf("%w: %d %s: %s", ErrServer, resp.StatusCode, eb.Code, eb.Error)
		}
		return nil, fmt.Errorf("%w: %d", ErrServer, resp.StatusCode)
	}
	return body, nil
}
