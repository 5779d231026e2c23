package api

import (
	"net/http"

	service "github.com/okian/replaytune/internal/app"
	"github.com/okian/replaytune/pkg/logger"
)

// WebhookHandler accepts recommendation requests with an optional callback.
type WebhookHandler struct {
	deps         Recommender
	maxBodyBytes int64
	logger       logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(deps Recommender, maxBodyBytes int64, l logger.Logger) *WebhookHandler {
	return &WebhookHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleWebhook handles POST /webhook/recommend requests. Duplicates answer
// 200 with duplicate set; a full delivery queue answers 429.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const op = "api.webhook_recommend"

	var req service.WebhookRequest
	if status, code, err := decodeJSON(w, r, h.maxBodyBytes, op, &req); err != nil {
		writeError(w, status, code, err)
		return
	}

	res, err := h.deps.SubmitWebhook(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
