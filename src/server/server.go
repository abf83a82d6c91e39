package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"trend-observer/src/logger"
	"trend-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// ReportServer
// -----------------------------------------------------------------------------

type ReportServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, owned by the hub goroutine
	clients     map[*Client]struct{}
	connections atomic.Int64
	broadcast   chan *models.MReport
	register    chan *Client
	unregister  chan *Client
	resend      chan *Client
	done        chan struct{}
	stopOnce    sync.Once

	latestReport *models.MReport
	stateMutex   sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewReportServer(cfg *models.MConfig, log *logger.Logger) *ReportServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ReportServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MReport, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		resend:     make(chan *Client),
		done:       make(chan struct{}),
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.engine,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ReportServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/metrics", s.getMetrics)
	api.GET("/report", s.getReport)
	api.GET("/charts", s.listCharts)
	api.GET("/charts/:name", s.getChart)
	api.GET("/datasets/:name", s.getDataset)

	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves HTTP until Stop is called. It blocks.
func (s *ReportServer) Start() error {
	s.Logger.Info("Starting server on %s", s.httpServer.Addr)
	go s.handleWebsockets()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ReportServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		err = s.httpServer.Shutdown(context.Background())
	})
	return err
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for httptest.
func (s *ReportServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------

func (s *ReportServer) report() *models.MReport {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.latestReport
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *ReportServer) getHealth(c *gin.Context) {
	var generatedAt int64
	if r := s.report(); r != nil {
		generatedAt = r.GeneratedAt
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   s.connections.Load(),
		"latest_update": generatedAt,
	})
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getConfig(c *gin.Context) {
	datasets := make([]gin.H, 0, len(s.Config.Datasets))
	for _, ds := range s.Config.Datasets {
		datasets = append(datasets, gin.H{"name": ds.Name, "resample": ds.Resample, "calendar": ds.Calendar})
	}
	comparisons := make([]string, 0, len(s.Config.Comparisons))
	for _, cmp := range s.Config.Comparisons {
		comparisons = append(comparisons, cmp.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets":                 datasets,
		"comparisons":              comparisons,
		"refresh_interval_seconds": s.Config.RefreshSecs,
	})
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getMetrics(c *gin.Context) {
	r := s.report()
	if r == nil {
		c.JSON(http.StatusOK, models.MProcessingMetrics{})
		return
	}
	c.JSON(http.StatusOK, r.Metrics)
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getReport(c *gin.Context) {
	r := s.report()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report yet"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// -----------------------------------------------------------------------------

func (s *ReportServer) listCharts(c *gin.Context) {
	names := []string{}
	if r := s.report(); r != nil {
		for _, chart := range r.Charts {
			names = append(names, chart.Name)
		}
	}
	c.JSON(http.StatusOK, gin.H{"charts": names})
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getChart(c *gin.Context) {
	name := c.Param("name")
	if r := s.report(); r != nil {
		for _, chart := range r.Charts {
			if chart.Name == name {
				c.JSON(http.StatusOK, chart)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown chart '%s'", name)})
}

// -----------------------------------------------------------------------------

func (s *ReportServer) getDataset(c *gin.Context) {
	name := c.Param("name")
	if r := s.report(); r != nil {
		for _, ds := range r.Datasets {
			if ds.Name == name {
				c.JSON(http.StatusOK, ds)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown dataset '%s'", name)})
}
