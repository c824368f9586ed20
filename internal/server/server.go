// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/errs"
	"github.com/agenthands/pyrite/internal/metrics"
)

// AnswerService is what the handlers need from the engine.
type AnswerService interface {
	GenerateAnswer(ctx context.Context, query string, maxIterations int) (*model.Result, error)
	GraphStats(ctx context.Context) (model.GraphStats, error)
	SearchNodes(ctx context.Context, term string, limit int) ([]model.Node, error)
}

type Server struct {
	engine   AnswerService
	metrics  *metrics.Metrics
	provider string
}

func NewServer(engine AnswerService, m *metrics.Metrics, provider string) *Server {
	return &Server{engine: engine, metrics: m, provider: provider}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/generate_boq", s.GenerateBOQ)
	r.GET("/graph/stats", s.GraphStats)
	r.POST("/graph/search", s.Search)
	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return r
}

type GenerateRequest struct {
	Query         string `json:"query" binding:"required"`
	MaxIterations int    `json:"max_iterations"`
}

type GenerateResponse struct {
	RequestID       string                  `json:"request_id"`
	Query           string                  `json:"query"`
	Answer          string                  `json:"answer"`
	BOQ             []model.BOQItem         `json:"boq"`
	SupportingFacts []model.Fact            `json:"supporting_facts"`
	Iterations      []model.IterationRecord `json:"iterations"`
	BaselineScore   float64                 `json:"baseline_score"`
	EnhancedScore   float64                 `json:"enhanced_score"`
	SelectedOrigin  model.Origin            `json:"selected_origin"`
	ElapsedMS       int64                   `json:"elapsed_ms"`
}

func (s *Server) GenerateBOQ(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	start := time.Now()
	result, err := s.engine.GenerateAnswer(c.Request.Context(), req.Query, req.MaxIterations)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "query failed",
			"query", req.Query, "elapsed", time.Since(start), "error", err)
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		RequestID:       result.RequestID,
		Query:           result.Query,
		Answer:          result.Answer,
		BOQ:             result.BOQ,
		SupportingFacts: result.SupportingFacts,
		Iterations:      result.Iterations,
		BaselineScore:   result.BaselineScore,
		EnhancedScore:   result.EnhancedScore,
		SelectedOrigin:  result.SelectedOrigin,
		ElapsedMS:       result.Elapsed.Milliseconds(),
	})
}

func (s *Server) GraphStats(c *gin.Context) {
	stats, err := s.engine.GraphStats(c.Request.Context())
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type SearchRequest struct {
	Term  string `json:"term" binding:"required"`
	Limit int    `json:"limit"`
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term is required"})
		return
	}

	nodes, err := s.engine.SearchNodes(c.Request.Context(), req.Term, req.Limit)
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "count": len(nodes)})
}

func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	graph := "up"
	code := http.StatusOK
	if _, err := s.engine.GraphStats(ctx); err != nil {
		status = "degraded"
		graph = "down"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"graph":    graph,
		"provider": s.provider,
	})
}

// errorResponse maps the error taxonomy onto HTTP status codes. Transient
// infrastructure trouble asks the caller to retry, fatal pipeline failures
// surface as gateway errors, anything else is a plain 500.
func errorResponse(err error) (int, gin.H) {
	switch {
	case errs.IsTransient(err):
		return http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retryable": true}
	case errs.IsFatal(err):
		return http.StatusBadGateway, gin.H{"error": err.Error(), "retryable": false}
	default:
		return http.StatusInternalServerError, gin.H{"error": err.Error(), "retryable": false}
	}
}
