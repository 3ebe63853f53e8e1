package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-lens/internal/logger"
	"meal-lens/internal/models"
	"meal-lens/internal/reconcile"
)

// pageData feeds both the chat page and the widget shell. The two surfaces
// share one card template, so corrected results render identically in both.
type pageData struct {
	BaseURL         string
	FoodDescription string
	Result          *models.AnalysisResult
	Error           string
}

func (s *Server) render(c *gin.Context, status int, name string, data any) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := s.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		logger.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) handleChatPage(c *gin.Context) {
	s.render(c, http.StatusOK, "index.html", pageData{BaseURL: s.cfg.BaseURL})
}

func (s *Server) handleChatSubmit(c *gin.Context) {
	data := pageData{
		BaseURL:         s.cfg.BaseURL,
		FoodDescription: strings.TrimSpace(c.PostForm("foodDescription")),
	}

	if data.FoodDescription == "" {
		data.Error = msgMissingInput
		s.render(c, http.StatusBadRequest, "index.html", data)
		return
	}

	result, err := s.analyze(c.Request.Context(), data.FoodDescription)
	if err != nil {
		logger.Error("analysis failed", zap.String("description", data.FoodDescription), zap.Error(err))
		data.Error = errorMessage(err)
		s.render(c, http.StatusInternalServerError, "index.html", data)
		return
	}

	data.Result = result
	s.render(c, http.StatusOK, "index.html", data)
}

func (s *Server) handleWidget(c *gin.Context) {
	s.render(c, http.StatusOK, "widget.html", pageData{BaseURL: s.cfg.BaseURL})
}

// handleWidgetRender turns a chat host's raw tool output into the card
// fragment the widget displays. The payload shape drifts with the host's
// prompts, so it goes through the same reconciler and corrector as our own
// upstream responses.
func (s *Server) handleWidgetRender(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.render(c, http.StatusBadRequest, "error-panel", msgGeneric)
		return
	}
	if len(raw) == 0 {
		raw = []byte("null")
	}

	ext, err := reconcile.Extract(raw)
	if err != nil {
		s.render(c, http.StatusBadRequest, "error-panel", msgMalformed)
		return
	}

	switch ext.State {
	case reconcile.StateLoading:
		s.render(c, http.StatusOK, "loading-panel", nil)
	case reconcile.StateError:
		s.render(c, http.StatusOK, "error-panel", ext.Err)
	case reconcile.StateReady:
		reconcile.CorrectTotals(ext.Result)
		s.render(c, http.StatusOK, "meal-cards", ext.Result)
	}
}
