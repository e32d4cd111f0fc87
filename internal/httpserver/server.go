package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/decodeproject/decode/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server provides the issuer's HTTP API.
type Server struct {
	addr      string
	api       model.IssuerAPI
	logger    *zap.Logger
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	stopOnce  sync.Once
}

type issueRequest struct {
	AttributeID string `json:"attribute_id"`
}

// NewServer creates a new HTTP API server. A nil logger discards output.
func NewServer(addr string, api model.IssuerAPI, logger *zap.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		api:    api,
		logger: logger.Named("httpserver"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)
	api.GET("/stats/attributes", s.handleAttributes)
	api.POST("/credentials", s.handleIssue)
	return r
}

// Listen binds the API address. Requests are served once Serve runs.
func (s *Server) Listen() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()
	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Serve handles requests on the bound listener until Stop. It returns nil
// after a graceful shutdown and the serve error otherwise.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("httpserver: Serve called before Listen")
	}
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("serve failed", zap.Error(err))
		return fmt.Errorf("httpserver: serve: %w", err)
	}
	return nil
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server. Safe to call more than once.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.cancel()
		if s.server == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.server.Shutdown(ctx)
	})
	return err
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	stats, err := s.api.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
		"total":  stats.Total,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.api.Stats(c.Request.Context())
	if err != nil {
		s.logger.Warn("stats query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleAttributes(c *gin.Context) {
	counts, err := s.api.IssuedByAttribute(c.Request.Context())
	if err != nil {
		s.logger.Warn("attribute query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read attribute counts"})
		return
	}
	if counts == nil {
		counts = []model.AttributeCount{}
	}
	c.JSON(http.StatusOK, gin.H{"attributes": counts})
}

func (s *Server) handleIssue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.AttributeID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attribute_id is required"})
		return
	}

	cred, err := s.api.RecordIssuance(c.Request.Context(), req.AttributeID)
	if err != nil {
		s.logger.Warn("record issuance failed", zap.String("attribute_id", req.AttributeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record issuance"})
		return
	}
	c.JSON(http.StatusCreated, cred)
}
