package api

import (
	"net/http"

	"github.com/okian/replaytune/internal/sample"
)

var availableEndpoints = []string{
	"/", "/health", "/healthz", "/recommend", "/recommend/test", "/webhook/recommend",
	"/stats", "/metrics", "/api-docs", "/openapi.yaml",
}

type endpointDoc struct {
	Description    string         `json:"description"`
	RequiredParams []string       `json:"required_params,omitempty"`
	OptionalParams []string       `json:"optional_params,omitempty"`
	Example        map[string]any `json:"example,omitempty"`
}

type indexResponse struct {
	Message         string                 `json:"message"`
	Version         string                 `json:"version"`
	Endpoints       map[string]endpointDoc `json:"endpoints"`
	SamplePlayerIDs []string               `json:"sample_player_ids"`
}

type notFoundResponse struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"available_endpoints"`
}

// DocsHandler serves the JSON index and the 404 body.
type DocsHandler struct {
	index indexResponse
}

// NewDocsHandler creates a new docs handler.
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{index: indexResponse{
		Message: "Song Recommendation API",
		Version: apiVersion,
		Endpoints: map[string]endpointDoc{
			"GET /health": endpointDoc{
				Description: "Health check endpoint",
			},
			"GET /": endpointDoc{
				Description: "API documentation",
			},
			"GET /stats": endpointDoc{
				Description: "Service statistics",
			},
			"GET /metrics": endpointDoc{
				Description: "Prometheus metrics",
			},
			"GET /api-docs": endpointDoc{
				Description: "OpenAPI reference",
			},
			"GET /recommend/test": endpointDoc{
				Description:    "Recommendations for a player of the sample replay",
				OptionalParams: []string{"player_id", "top_n"},
			},
			"POST /recommend": endpointDoc{
				Description:    "Get song recommendations based on replay data",
				RequiredParams: []string{"player_id"},
				OptionalParams: []string{"replay_data", "top_n"},
				Example: map[string]any{
					"player_id":   sample.PlayerZwyxerS,
					"top_n":       3,
					"replay_data": "... (full replay data object)",
				},
			},
			"POST /webhook/recommend": endpointDoc{
				Description:    "Recommendations with optional asynchronous callback delivery",
				RequiredParams: []string{"player_id"},
				OptionalParams: []string{"replay_data", "top_n", "callback_url", "request_id"},
			},
		},
		SamplePlayerIDs: []string{sample.PlayerZwyxerS, sample.PlayerMeanCereal3591, sample.PlayerSideSwiper420e},
	}}
}

// HandleIndex handles GET / requests.
func (h *DocsHandler) HandleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.index)
}

// HandleNotFound answers unknown routes.
func (h *DocsHandler) HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, notFoundResponse{
		Success:            false,
		Error:              "Endpoint not found",
		AvailableEndpoints: availableEndpoints,
	})
}
