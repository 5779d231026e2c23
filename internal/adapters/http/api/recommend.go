package api

import (
	"net/http"
	"strconv"

	service "github.com/okian/replaytune/internal/app"
	"github.com/okian/replaytune/internal/sample"
	"github.com/okian/replaytune/pkg/logger"
)

// RecommendHandler serves synchronous recommendations.
type RecommendHandler struct {
	deps         Recommender
	maxBodyBytes int64
	logger       logger.Logger
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps Recommender, maxBodyBytes int64, l logger.Logger) *RecommendHandler {
	return &RecommendHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleRecommend handles POST /recommend requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"

	var req service.RecommendRequest
	if status, code, err := decodeJSON(w, r, h.maxBodyBytes, op, &req); err != nil {
		writeError(w, status, code, err)
		return
	}

	rec, err := h.deps.Recommend(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleRecommendTest handles GET /recommend/test?player_id=&top_n= against
// the embedded sample replay.
func (h *RecommendHandler) HandleRecommendTest(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend_test"

	req := service.RecommendRequest{PlayerID: r.URL.Query().Get("player_id")}
	if req.PlayerID == "" {
		req.PlayerID = sample.PlayerZwyxerS
	}
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, service.CodeBadRequest, WrapKind(op, ErrBadRequest, err))
			return
		}
		req.TopN = &n
	}

	rec, err := h.deps.Recommend(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
