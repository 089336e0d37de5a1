// Package server exposes the scoring pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohv/scorj/internal/history"
	"github.com/sohv/scorj/internal/profile"
	"github.com/sohv/scorj/internal/scoring"
)

// Server wires the scorer and the history store into a gin engine.
type Server struct {
	scorer *scoring.Scorer
	store  *history.Store
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the HTTP server. The history store may be nil.
func New(scorer *scoring.Scorer, store *history.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		scorer: scorer,
		store:  store,
		logger: logger,
		engine: engine,
	}

	engine.Use(s.requestLogger())

	v1 := engine.Group("/api/v1")
	v1.POST("/score", s.handleScore)
	v1.POST("/score/batch", s.handleScoreBatch)
	v1.GET("/history", s.handleHistory)
	v1.GET("/health", s.handleHealth)

	return s
}

// Handler exposes the engine for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type scoreRequest struct {
	Resume *profile.ResumeProfile `json:"resume" binding:"required"`
	Job    *profile.JobProfile    `json:"job" binding:"required"`
}

func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	report, err := s.score(c.Request.Context(), req.Resume, req.Job)
	if err != nil {
		s.writeScoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

type batchRequest struct {
	Resume *profile.ResumeProfile `json:"resume" binding:"required"`
	Jobs   []*profile.JobProfile  `json:"jobs" binding:"required"`
}

type batchItem struct {
	Job    *profile.JobProfile `json:"job"`
	Report *scoring.Report     `json:"report,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// handleScoreBatch scores one resume against many jobs and returns the
// results sorted by final score, best match first.
func (s *Server) handleScoreBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Jobs) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "at least one job is required"})
		return
	}

	items := make([]batchItem, 0, len(req.Jobs))
	for _, job := range req.Jobs {
		item := batchItem{Job: job}
		report, err := s.score(c.Request.Context(), req.Resume, job)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Report = report
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		si, sj := -1, -1
		if items[i].Report != nil {
			si = items[i].Report.FinalScore
		}
		if items[j].Report != nil {
			sj = items[j].Report.FinalScore
		}
		return si > sj
	})

	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleHistory(c *gin.Context) {
	entries, err := s.store.Recent(c.Request.Context(), 50)
	if err != nil {
		s.logger.Error("listing history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "listing history failed"})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": entries})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// score runs the pipeline and records the outcome. Recording failures are
// logged, never surfaced: the report is already computed.
func (s *Server) score(ctx context.Context, resume *profile.ResumeProfile, job *profile.JobProfile) (*scoring.Report, error) {
	report, err := s.scorer.Score(ctx, resume, job)
	if err != nil {
		return nil, err
	}

	if err := s.store.Record(ctx, job.Title, report); err != nil {
		s.logger.Warn("recording scoring run failed", zap.Error(err))
	}

	return report, nil
}

// writeScoreError maps pipeline errors to HTTP statuses. Only contract
// violations are client errors; everything else inside the pipeline degrades
// instead of erroring, so remaining failures are internal.
func (s *Server) writeScoreError(c *gin.Context, err error) {
	if errors.Is(err, profile.ErrEmptyResume) || errors.Is(err, profile.ErrEmptyJob) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Error("scoring run failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "scoring failed"})
}
