package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	dto "github.com/bymediadev/SoapBoxx/internal/adapter/dto/feedback"
	"github.com/bymediadev/SoapBoxx/internal/domain/entities"
	"github.com/bymediadev/SoapBoxx/internal/usecase/feedback"
)

// Feedback exposes the feedback engine over HTTP.
type Feedback struct {
	svc    feedback.Service
	logger *zap.Logger
}

// NewFeedback creates the feedback handler.
func NewFeedback(svc feedback.Service, logger *zap.Logger) *Feedback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feedback{svc: svc, logger: logger}
}

// Analyze runs a full analysis. The request context cancels the AI call
// when the client disconnects.
func (h *Feedback) Analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.svc.Analyze(c.Request().Context(), req.Transcript, feedback.AnalyzeOptions{
		Depth:     entities.AnalysisDepth(req.Depth),
		FocusArea: req.FocusArea,
		Duration:  time.Duration(req.DurationSeconds * float64(time.Second)),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Focus narrows the analysis to one scoring dimension.
func (h *Feedback) Focus(c echo.Context) error {
	var req dto.FocusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.svc.GetSpecificFeedback(c.Request().Context(),
		req.Transcript, req.FocusArea, entities.AnalysisDepth(req.Depth))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Compare analyzes two transcripts and returns the per-dimension delta.
func (h *Feedback) Compare(c echo.Context) error {
	var req dto.CompareRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	comparison, err := h.svc.GetComparativeAnalysis(c.Request().Context(),
		req.TranscriptA, req.TranscriptB)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.JSON(http.StatusOK, comparison)
}

// CacheStats returns the analysis cache counters.
func (h *Feedback) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.CacheStats())
}

// CacheClear drops all cached analyses.
func (h *Feedback) CacheClear(c echo.Context) error {
	h.svc.ClearCache()
	return c.NoContent(http.StatusNoContent)
}
