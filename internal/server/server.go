package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/preview"
	"github.com/rezonia/invoice-submit/internal/processor"
	"github.com/rezonia/invoice-submit/internal/table"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	// RateLimit is requests per minute per client IP, 0 disables limiting
	RateLimit int
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	handler  http.Handler
	pipeline *processor.Pipeline
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithClock overrides the source of "today" for table queries
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewServer creates a new API server. A nil pipeline gets the defaults.
func NewServer(config *Config, pipeline *processor.Pipeline, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if pipeline == nil {
		pipeline = processor.NewPipeline()
	}

	s := &Server{
		config:   config,
		router:   gin.New(),
		pipeline: pipeline,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery(), requestID(), requestLogger(s.log))
	s.setupRoutes()

	s.handler = s.router
	if config.RateLimit > 0 {
		s.handler = rateLimit(s.router, config.RateLimit)
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/rules", s.handleRules)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/documents/:kind/prepare", s.handlePrepare)
		v1.POST("/preview", s.handlePreview)
		v1.GET("/table/query", s.handleTableQueryParams)
		v1.POST("/table/query", s.handleTableQuery)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRules(c *gin.Context) {
	t := s.pipeline.Rules()
	resp := RulesResponse{Jurisdictions: []JurisdictionInfo{}}
	for _, code := range t.Codes() {
		resp.Jurisdictions = append(resp.Jurisdictions, jurisdictionInfo(t.Jurisdiction(code)))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleValidate(c *gin.Context) {
	var req processor.Request
	if !bindJSON(c, &req) {
		return
	}

	result := s.pipeline.Validate(c.Request.Context(), &req)
	if result.Error != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: result.Error.Error()})
		return
	}

	status := http.StatusOK
	if !result.Valid() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, ValidationResponse{
		Valid:          result.Valid(),
		Capabilities:   result.Capabilities,
		EntityErrors:   result.EntityErrors,
		DocumentErrors: result.DocumentErrors,
	})
}

func (s *Server) handlePrepare(c *gin.Context) {
	kind, ok := model.ParseDocumentKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown document kind", Details: c.Param("kind")})
		return
	}

	var req processor.Request
	if !bindJSON(c, &req) {
		return
	}
	req.Kind = kind

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result := s.pipeline.Prepare(ctx, &req)
	if result.Error != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: result.Error.Error(), Warnings: result.Warnings})
		return
	}

	resp := PrepareResponse{
		Kind:           kind,
		Payload:        result.Payload,
		Capabilities:   result.Capabilities,
		EntityErrors:   result.EntityErrors,
		DocumentErrors: result.DocumentErrors,
		Warnings:       result.Warnings,
	}
	if !result.Valid() {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePreview(c *gin.Context) {
	var req PreviewRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, preview.Calculate(req.Items, req.PriceModes))
}

func (s *Server) handleTableQuery(c *gin.Context) {
	var req TableQueryRequest
	if !bindJSON(c, &req) {
		return
	}

	now := s.now
	if req.Today != "" {
		today, err := table.ParseDate(req.Today)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid today", Details: err.Error()})
			return
		}
		now = func() time.Time { return today }
	}

	params := req.Params
	if req.Filter != nil {
		params.Filter = req.Filter
	}
	s.respondTableQuery(c, &params, now)
}

func (s *Server) handleTableQueryParams(c *gin.Context) {
	params := table.ParseParams(c.Request.URL.Query())
	s.respondTableQuery(c, &params, s.now)
}

func (s *Server) respondTableQuery(c *gin.Context, params *table.Params, now func() time.Time) {
	m, err := table.NewManager(params, table.WithClock(now))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	state := m.Params()
	c.JSON(http.StatusOK, TableQueryResponse{
		Params:    state,
		Query:     state.Query,
		URLParams: state.URLValues().Encode(),
		APIParams: state.APIValues().Encode(),
	})
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		derr := model.NewDecodeError("request", "invalid JSON body", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: derr.Message, Details: derr.Error()})
		return false
	}
	return true
}
