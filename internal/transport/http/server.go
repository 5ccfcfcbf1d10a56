package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sentenex/internal/agent"
	"sentenex/internal/block"
	"sentenex/internal/config"
	"sentenex/internal/gateway/database"
	"sentenex/internal/graph"
	"sentenex/internal/logger"
	"sentenex/internal/market"
	"sentenex/internal/report"
)

// CandleFetcher is the slice of the market source the report handler needs.
type CandleFetcher interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error)
}

// Server exposes the strategy editor and agent controls over HTTP.
type Server struct {
	Router *gin.Engine

	cfg        *config.Config
	graphs     *graph.Store
	strategies database.StrategyStore
	session    *agent.Session
	candles    market.CandleStore
	source     CandleFetcher
	reports    *report.Generator

	httpSrv *http.Server
}

// NewServer builds the gin router and registers routes.
func NewServer(cfg *config.Config, graphs *graph.Store, strategies database.StrategyStore, session *agent.Session, candles market.CandleStore, source CandleFetcher, reports *report.Generator) *Server {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		Router:     r,
		cfg:        cfg,
		graphs:     graphs,
		strategies: strategies,
		session:    session,
		candles:    candles,
		source:     source,
		reports:    reports,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)

	api := s.Router.Group("/api")
	{
		api.GET("/blocks", s.listBlocks)

		api.GET("/graph", s.getGraph)
		api.PUT("/graph", s.putGraph)
		api.POST("/graph/nodes", s.addNode)
		api.PATCH("/graph/nodes/:id", s.updateNode)
		api.DELETE("/graph/nodes/:id", s.removeNode)
		api.POST("/graph/edges", s.addEdge)
		api.DELETE("/graph/edges/:id", s.removeEdge)

		api.POST("/compile", s.compile)

		api.GET("/strategies", s.listStrategies)
		api.POST("/strategies", s.saveStrategy)
		api.GET("/strategies/:id", s.getStrategy)
		api.DELETE("/strategies/:id", s.deleteStrategy)
		api.POST("/strategies/:id/load", s.loadStrategy)

		ag := api.Group("/agent")
		{
			ag.POST("/activate", s.activateAgent)
			ag.POST("/pause", s.pauseAgent)
			ag.POST("/stop", s.stopAgent)
			ag.GET("/status", s.agentStatus)
			ag.GET("/markers", s.agentMarkers)
		}

		api.POST("/report", s.generateReport)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.App.HTTPAddr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()
	logger.Infof("HTTP API listening on %s", s.cfg.App.HTTPAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// editStatus maps graph-edit errors to HTTP codes. Duplicate wiring and
// self-loops are rejected as conflicts; unknown ids are 404; schema
// violations are 400.
func editStatus(err error) int {
	var (
		selfLoop *graph.SelfLoopError
		dup      *graph.DuplicateEdgeError
		noNode   *graph.NodeNotFoundError
		noEdge   *graph.EdgeNotFoundError
		unknown  *block.ErrUnknownKind
		badParam *block.ErrInvalidParam
	)
	switch {
	case errors.As(err, &selfLoop), errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &noNode), errors.As(err, &noEdge):
		return http.StatusNotFound
	case errors.As(err, &unknown), errors.As(err, &badParam):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWith(c *gin.Context, err error) {
	c.JSON(editStatus(err), gin.H{"error": err.Error()})
}
