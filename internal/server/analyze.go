package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-lens/internal/llm"
	"meal-lens/internal/logger"
	"meal-lens/internal/models"
	"meal-lens/internal/reconcile"
)

// User-visible messages for the failure classes of one analysis. Unknown
// failures normalize to the generic message rather than leaking internals.
const (
	msgMissingInput   = "Food description is required"
	msgMissingAPIKey  = "nutrition service is not configured: missing API key"
	msgUpstreamFailed = "nutrition service request failed"
	msgMalformed      = "nutrition service returned an unreadable response"
	msgGeneric        = "failed to analyze food, please try again"
)

// errIncomplete covers a syntactically valid upstream body that never
// produced a structured result. For the single-shot API there is nothing
// left to wait for, so it is terminal.
var errIncomplete = errors.New("upstream completion carried no structured result")

// upstreamReportedError carries an error string the model itself returned.
// These are surfaced verbatim; any other unrecognized failure is not.
type upstreamReportedError struct {
	msg string
}

func (e *upstreamReportedError) Error() string {
	return e.msg
}

// analyze runs the full pipeline for one food description: upstream
// completion, shape reconciliation, totals correction. No retries; every
// failure is terminal for this request.
func (s *Server) analyze(ctx context.Context, foodDescription string) (*models.AnalysisResult, error) {
	payload, err := s.analyzer.Analyze(ctx, foodDescription)
	if err != nil {
		return nil, err
	}

	ext, err := reconcile.Extract(payload)
	if err != nil {
		return nil, llm.ErrMalformed
	}

	switch ext.State {
	case reconcile.StateError:
		return nil, &upstreamReportedError{msg: ext.Err}
	case reconcile.StateLoading:
		return nil, errIncomplete
	}

	reconcile.CorrectTotals(ext.Result)
	s.recordHistory(foodDescription, ext.Result)
	return ext.Result, nil
}

// recordHistory appends to the analysis log, best effort. A storage failure
// never fails the request that produced the result.
func (s *Server) recordHistory(foodDescription string, result *models.AnalysisResult) {
	if s.storage == nil {
		return
	}
	if _, err := s.storage.RecordAnalysis(foodDescription, result); err != nil {
		logger.Warn("failed to record analysis history", zap.Error(err))
	}
}

// errorMessage maps a pipeline failure to the message surfaced in the error
// panel and the JSON error body.
func errorMessage(err error) string {
	var reported *upstreamReportedError
	switch {
	case errors.As(err, &reported):
		return reported.msg
	case errors.Is(err, llm.ErrMissingCredential):
		return msgMissingAPIKey
	case errors.Is(err, llm.ErrUpstream):
		return msgUpstreamFailed
	case errors.Is(err, llm.ErrMalformed):
		return msgMalformed
	}
	return msgGeneric
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingInput})
		return
	}

	desc := strings.TrimSpace(req.FoodDescription)
	if desc == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingInput})
		return
	}

	result, err := s.analyze(c.Request.Context(), desc)
	if err != nil {
		logger.Error("analysis failed", zap.String("description", desc), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dailyTotals": result.DailyTotals,
		"loggedMeals": result.LoggedMeals,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	if s.storage == nil {
		c.JSON(http.StatusOK, gin.H{"analyses": []*models.AnalysisRecord{}})
		return
	}

	records, err := s.storage.RecentAnalyses(limit)
	if err != nil {
		logger.Error("failed to load analysis history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if records == nil {
		records = []*models.AnalysisRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"analyses": records})
}
