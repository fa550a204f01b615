package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/contactlens-org/contactlens/config"
	"github.com/contactlens-org/contactlens/engine"
	"github.com/contactlens-org/contactlens/insight"
	"github.com/contactlens-org/contactlens/records"
	"github.com/contactlens-org/contactlens/schema"
	"github.com/contactlens-org/contactlens/view"
)

// ============================================================================
// HTTP API — The dashboard's boundary with the browser
// ============================================================================
// All view mutations are serialized under one mutex; the core itself stays
// single-threaded. Every call that changes the aggregate view — upload,
// reset, dimension, drill-down — rotates the session token (cell toggles
// don't; they never alter aggregates). The insight handler captures the
// token before calling Gemini and re-checks it afterwards, discarding
// narratives for superseded state — the core exposes no request identity,
// so staleness is handled here.
// ============================================================================

// Narrator generates a narrative from a prompt. Satisfied by
// *insight.Client; test servers substitute fakes.
type Narrator interface {
	Generate(prompt string) (string, error)
}

// Server owns the live view state and the AI boundary client.
type Server struct {
	mu        sync.Mutex
	state     view.State
	session   string
	narrator  Narrator
	maxUpload int64
}

// New creates a Server from configuration.
func New(cfg *config.Config) *Server {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 16 << 20
	}
	return &Server{
		state: view.NewState(),
		narrator: insight.NewClient(insight.Config{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			Endpoint: cfg.GeminiEndpoint,
		}),
		maxUpload: maxUpload,
	}
}

// WithNarrator swaps the AI boundary client. Used by tests.
func (s *Server) WithNarrator(n Narrator) *Server {
	s.narrator = n
	return s
}

// Router builds the gin engine with all API routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/upload", s.handleUpload)
		api.GET("/view", s.handleView)
		api.PUT("/dimension", s.handleDimension)
		api.PUT("/drilldown", s.handleDrillDown)
		api.POST("/toggle", s.handleToggle)
		api.POST("/reset", s.handleReset)
		api.POST("/insight", s.handleInsight)
	}
	return r
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	log.Printf("🚀 contactlens: listening on %s", addr)
	return s.Router().Run(addr)
}

// ============================================================================
// UPLOAD
// ============================================================================

type uploadResponse struct {
	Session string `json:"session"`
	Records int    `json:"records"`
}

func (s *Server) handleUpload(c *gin.Context) {
	name, data, err := s.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_read_failure", "message": err.Error()})
		return
	}

	var recs []records.Record
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		recs, err = schema.IngestXLSX(data)
	} else {
		recs, err = schema.Ingest(string(data))
	}
	if err != nil {
		s.rejectUpload(c, err)
		return
	}

	s.mu.Lock()
	s.state = s.state.LoadRecords(recs)
	s.session = uuid.NewString()
	session := s.session
	s.mu.Unlock()

	log.Printf("📊 contactlens: loaded %d records from %s (session %s)", len(recs), name, session)
	c.JSON(http.StatusOK, uploadResponse{Session: session, Records: len(recs)})
}

// readUpload accepts either a multipart form with a "file" part or a raw
// request body, capped at the configured upload size.
func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		return file.Filename, data, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", nil, err
	}
	return c.GetHeader("X-Filename"), data, nil
}

// rejectUpload maps ingestion errors to the upload failure surface. The
// previous record set stays untouched on every failure path.
func (s *Server) rejectUpload(c *gin.Context, err error) {
	var missing *schema.MissingColumnsError
	switch {
	case errors.Is(err, schema.ErrEmptyOrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_or_invalid", "message": err.Error()})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_columns",
			"columns": missing.Columns,
			"message": missing.Error(),
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_read_failure", "message": err.Error()})
	}
}

// ============================================================================
// VIEW STATE
// ============================================================================

type viewResponse struct {
	Session   string                `json:"session"`
	Records   int                   `json:"records"`
	Dimension schema.Dimension      `json:"dimension"`
	DrillDown schema.DrillDown      `json:"drillDown"`
	Expanded  *view.ExpandedCell    `json:"expanded,omitempty"`
	Headers   []string              `json:"headers"`
	Rows      []engine.AggregateRow `json:"rows"`
}

func (s *Server) handleView(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.snapshot())
}

// snapshot builds a viewResponse; callers hold the lock.
func (s *Server) snapshot() viewResponse {
	headers, rows := s.state.Aggregate()
	return viewResponse{
		Session:   s.session,
		Records:   s.state.Len(),
		Dimension: s.state.Dimension,
		DrillDown: s.state.DrillDown,
		Expanded:  s.state.Expanded,
		Headers:   headers,
		Rows:      rows,
	}
}

func (s *Server) handleDimension(c *gin.Context) {
	var req struct {
		Dimension schema.Dimension `json:"dimension"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Dimension.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_dimension"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.SetDimension(req.Dimension)
	s.session = uuid.NewString()
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) handleDrillDown(c *gin.Context) {
	var req struct {
		DrillDown schema.DrillDown `json:"drillDown"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.DrillDown.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_drilldown"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.SetDrillDown(req.DrillDown)
	s.session = uuid.NewString()
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) handleToggle(c *gin.Context) {
	var req struct {
		Primary string `json:"primary"`
		Key     string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_toggle"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.ToggleCell(req.Primary, req.Key)
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) handleReset(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Reset()
	s.session = uuid.NewString()
	c.JSON(http.StatusOK, s.snapshot())
}

// ============================================================================
// INSIGHT
// ============================================================================

func (s *Server) handleInsight(c *gin.Context) {
	s.mu.Lock()
	if s.state.Len() == 0 {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_data"})
		return
	}
	session := s.session
	dim, drill := s.state.Dimension, s.state.DrillDown
	headers, rows := s.state.Aggregate()
	s.mu.Unlock()

	prompt := insight.BuildPrompt(insight.Summarize(headers, rows, dim, drill), dim, drill)

	// The Gemini call runs outside the lock; uploads may land meanwhile.
	narrative, err := s.narrator.Generate(prompt)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "insight_request_failure", "message": err.Error()})
		return
	}

	s.mu.Lock()
	stale := s.session != session
	s.mu.Unlock()
	if stale {
		log.Printf("⚠️ contactlens: discarding insight for superseded session %s", session)
		c.JSON(http.StatusConflict, gin.H{"error": "stale_insight"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "narrative": narrative})
}
