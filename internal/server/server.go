package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-lens/internal/config"
	"meal-lens/internal/llm"
	"meal-lens/internal/logger"
	"meal-lens/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires the analysis pipeline to its three surfaces: the JSON API,
// the MCP tool endpoint for chat hosts, and the rendered chat page / widget.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	analyzer   llm.Analyzer
	tmpl       *template.Template
	cfg        *config.Config
}

func New(cfg *config.Config, analyzer llm.Analyzer, stor *storage.SQLiteStorage) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		storage:  stor,
		analyzer: analyzer,
		tmpl:     tmpl,
		cfg:      cfg,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	s.engine = engine
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/", s.handleChatPage)
	s.engine.POST("/", s.handleChatSubmit)

	s.engine.GET("/widget", s.handleWidget)
	s.engine.POST("/widget/render", s.handleWidgetRender)

	s.engine.POST("/api/analyze", s.handleAnalyze)
	s.engine.GET("/api/history", s.handleHistory)

	s.engine.POST("/mcp", s.handleMCP)
	s.engine.GET("/mcp/tools", s.handleMCPTools)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(ctx context.Context) error {
	logger.Info("starting meal-lens server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}
