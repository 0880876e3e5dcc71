package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/verdict"
)

// Handler serves the verdict-generation endpoint.
type Handler struct {
	pipeline *verdict.Pipeline
	logger   *zap.Logger
}

// NewHandler builds the handler around a pipeline.
func NewHandler(pipeline *verdict.Pipeline, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pipeline: pipeline, logger: logger}
}

// generateRequest is the inbound JSON body. Field-level validation happens
// in the pipeline; binding only enforces well-formed JSON.
type generateRequest struct {
	Title     string `json:"title"`
	Details   string `json:"details"`
	Category  string `json:"category"`
	TrialType string `json:"trial_type"`
}

// generate handles POST /api/v1/verdicts.
func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}

	sub := &domain.DisputeSubmission{
		Title:     req.Title,
		Details:   req.Details,
		Category:  domain.Category(req.Category),
		TrialType: domain.TrialType(req.TrialType),
	}

	result, err := h.pipeline.Generate(c.Request.Context(), sub)
	switch {
	case errors.Is(err, domain.ErrInjectionDetected):
		fail(c, http.StatusBadRequest, codeInjectionDetected, "submission contains disallowed content")
		return
	case errors.Is(err, domain.ErrInvalidSubmission):
		fail(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	case err != nil:
		// Unreachable in practice: model exhaustion falls back internally.
		h.logger.Error("verdict generation failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, codeInternal, "verdict generation failed")
		return
	}

	ok(c, gin.H{
		"verdict":        result.Verdict,
		"mock":           result.Mock,
		"precedent_used": result.PrecedentUsed,
	})
}

// healthz reports liveness.
func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
