// Package server exposes the command pipeline over HTTP with gin.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Pipeline runs utterances and recorded entries.
type Pipeline interface {
	Run(ctx context.Context, utterance string) domain.Response
	Replay(ctx context.Context, id string) (domain.Response, error)
	RunAction(ctx context.Context, action domain.StructuredAction) domain.Response
	History() ports.HistoryRepository
}

// Classifier is the tier-1 stage.
type Classifier interface {
	Classify(ctx context.Context, utterance string) domain.Classification
}

// Extractor is the tier-2 stage.
type Extractor interface {
	Extract(ctx context.Context, payload string) domain.Extraction
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Pipeline   Pipeline
	Classifier Classifier
	Extractor  Extractor
	Catalog    *catalog.Catalog
	Logger     ports.Logger
	// LogWriter receives gin access and recovery logs; nil discards them.
	LogWriter io.Writer
}

// Server owns the gin engine.
type Server struct {
	deps   Deps
	engine *gin.Engine
}

// New builds the engine and registers every route.
func New(deps Deps) *Server {
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default
	}
	out := deps.LogWriter
	if out == nil {
		out = io.Discard
	}

	engine := gin.New()
	engine.Use(gin.LoggerWithWriter(out, "/healthz"), gin.RecoveryWithWriter(out))

	s := &Server{deps: deps, engine: engine}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	v1 := s.engine.Group("/v1")
	v1.POST("/commands", s.runCommand)
	v1.POST("/classify", s.classify)
	v1.POST("/extract", s.extract)
	v1.GET("/actions", s.listActions)
	v1.POST("/actions", s.runAction)
	v1.GET("/history", s.listHistory)
	v1.DELETE("/history", s.clearHistory)
	v1.POST("/history/:id/replay", s.replay)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.info("http server listening", map[string]interface{}{"addr": addr})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.info("http server shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	}
}

type utteranceRequest struct {
	Utterance string `json:"utterance" binding:"required"`
}

type payloadRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type actionRequest struct {
	Action     domain.ActionID `json:"action" binding:"required"`
	Parameters domain.Params   `json:"parameters"`
	// Confidence defaults to 1 when omitted; the dispatcher gate still applies.
	Confidence     *float64 `json:"confidence"`
	Interpretation string   `json:"interpretation"`
}

type classifyResponse struct {
	SubCommands []domain.SubCommand `json:"sub_commands"`
	Degraded    string              `json:"degraded,omitempty"`
}

type extractResponse struct {
	Action   domain.StructuredAction `json:"action"`
	Source   domain.ExtractionSource `json:"source"`
	Degraded string                  `json:"degraded,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) runCommand(c *gin.Context) {
	var req utteranceRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.deps.Pipeline.Run(c.Request.Context(), req.Utterance))
}

func (s *Server) classify(c *gin.Context) {
	var req utteranceRequest
	if !bind(c, &req) {
		return
	}
	result := s.deps.Classifier.Classify(c.Request.Context(), req.Utterance)
	c.JSON(http.StatusOK, classifyResponse{SubCommands: result.SubCommands, Degraded: errText(result.Degraded)})
}

func (s *Server) extract(c *gin.Context) {
	var req payloadRequest
	if !bind(c, &req) {
		return
	}
	result := s.deps.Extractor.Extract(c.Request.Context(), req.Payload)
	c.JSON(http.StatusOK, extractResponse{Action: result.Action, Source: result.Source, Degraded: errText(result.Degraded)})
}

func (s *Server) listActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": s.deps.Catalog.Specs()})
}

func (s *Server) runAction(c *gin.Context) {
	var req actionRequest
	if !bind(c, &req) {
		return
	}
	confidence := 1.0
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	action := domain.StructuredAction{
		Action:         domain.ActionID(strings.TrimSpace(string(req.Action))),
		Parameters:     req.Parameters,
		Confidence:     confidence,
		Interpretation: req.Interpretation,
	}
	c.JSON(http.StatusOK, s.deps.Pipeline.RunAction(c.Request.Context(), action))
}

func (s *Server) listHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.deps.Pipeline.History().List()})
}

func (s *Server) clearHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": s.deps.Pipeline.History().Clear()})
}

func (s *Server) replay(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.deps.Pipeline.History().Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found: " + id})
		return
	}
	resp, err := s.deps.Pipeline.Replay(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (s *Server) info(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(msg, fields)
	}
}
