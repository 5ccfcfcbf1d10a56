package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentenex/internal/agent"
	"sentenex/internal/block"
	"sentenex/internal/gateway/database"
	"sentenex/internal/graph"
	"sentenex/internal/logger"
	"sentenex/internal/market"
	"sentenex/internal/report"
)

type blockView struct {
	Name          string         `json:"name"`
	Category      string         `json:"category"`
	Label         string         `json:"label"`
	InputPorts    []string       `json:"input_ports"`
	OutputPorts   []string       `json:"output_ports"`
	DefaultParams map[string]any `json:"default_params"`
}

func (s *Server) listBlocks(c *gin.Context) {
	kinds := block.Kinds()
	out := make([]blockView, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, blockView{
			Name:          k.Name,
			Category:      string(k.Category),
			Label:         k.Label,
			InputPorts:    k.InputPorts,
			OutputPorts:   k.OutputPorts,
			DefaultParams: k.DefaultParams,
		})
	}
	c.JSON(http.StatusOK, gin.H{"blocks": out})
}

func (s *Server) getGraph(c *gin.Context) {
	c.JSON(http.StatusOK, s.graphs.Snapshot())
}

func (s *Server) putGraph(c *gin.Context) {
	var g graph.Graph
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.graphs.Load(g); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, s.graphs.Snapshot())
}

type addNodeRequest struct {
	Kind     string         `json:"kind" binding:"required"`
	Params   map[string]any `json:"params"`
	Position graph.Position `json:"position"`
}

func (s *Server) addNode(c *gin.Context) {
	var req addNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.graphs.AddNode(req.Kind, req.Params, req.Position)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

type updateNodeRequest struct {
	Params map[string]any `json:"params" binding:"required"`
}

func (s *Server) updateNode(c *gin.Context) {
	var req updateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.graphs.UpdateNodeParams(c.Param("id"), req.Params)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) removeNode(c *gin.Context) {
	if err := s.graphs.RemoveNode(c.Param("id")); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addEdgeRequest struct {
	Source     string `json:"source" binding:"required"`
	SourcePort string `json:"source_port"`
	Target     string `json:"target" binding:"required"`
	TargetPort string `json:"target_port"`
}

func (s *Server) addEdge(c *gin.Context) {
	var req addEdgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := s.graphs.AddEdge(req.Source, req.SourcePort, req.Target, req.TargetPort)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) removeEdge(c *gin.Context) {
	if err := s.graphs.RemoveEdge(c.Param("id")); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) compile(c *gin.Context) {
	c.JSON(http.StatusOK, graph.Compile(s.graphs.Snapshot()))
}

type saveStrategyRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) saveStrategy(c *gin.Context) {
	var req saveStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap := s.graphs.Snapshot()
	cfg := graph.Compile(snap)

	graphJSON, err := json.Marshal(snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	rec, err := s.strategies.Save(c.Request.Context(), database.StrategyRecord{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Market:      cfg.Token + "/" + cfg.Stablecoin,
		RiskLabel:   string(cfg.RiskLevel),
		GraphJSON:   string(graphJSON),
		ConfigJSON:  string(cfgJSON),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, strategyView(rec))
}

func (s *Server) listStrategies(c *gin.Context) {
	recs, err := s.strategies.List(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		out = append(out, strategyView(rec))
	}
	c.JSON(http.StatusOK, gin.H{"strategies": out})
}

func (s *Server) getStrategy(c *gin.Context) {
	rec, err := s.strategies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.strategyError(c, err)
		return
	}
	c.JSON(http.StatusOK, strategyView(rec))
}

func (s *Server) deleteStrategy(c *gin.Context) {
	if err := s.strategies.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.strategyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadStrategy replaces the editor graph with a saved one.
func (s *Server) loadStrategy(c *gin.Context) {
	rec, err := s.strategies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.strategyError(c, err)
		return
	}
	var g graph.Graph
	if err := json.Unmarshal([]byte(rec.GraphJSON), &g); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.graphs.Load(g); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, s.graphs.Snapshot())
}

func (s *Server) strategyError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrStrategyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func strategyView(rec database.StrategyRecord) gin.H {
	return gin.H{
		"id":          rec.ID,
		"name":        rec.Name,
		"description": rec.Description,
		"market":      rec.Market,
		"risk_label":  rec.RiskLabel,
		"graph":       json.RawMessage(rec.GraphJSON),
		"config":      json.RawMessage(rec.ConfigJSON),
		"created_at":  rec.CreatedAt,
		"updated_at":  rec.UpdatedAt,
	}
}

// activateAgent compiles the current graph and starts a session with the
// resulting config snapshot. Later graph edits do not affect the running
// session.
func (s *Server) activateAgent(c *gin.Context) {
	cfg := graph.Compile(s.graphs.Snapshot())
	if err := s.session.Activate(c.Request.Context(), cfg); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, agent.ErrInvalidConfig):
			status = http.StatusBadRequest
		case errors.Is(err, agent.ErrNotIdle):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.Status())
}

func (s *Server) pauseAgent(c *gin.Context) {
	if err := s.session.Pause(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.Status())
}

func (s *Server) stopAgent(c *gin.Context) {
	snap := s.session.Status()
	if len(snap.Iterations) > 0 {
		logger.Infof("session summary:\n%s", agent.FormatIterationTable(snap.Iterations))
	}
	if err := s.session.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.Status())
}

func (s *Server) agentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Status())
}

func (s *Server) agentMarkers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markers": s.session.Markers()})
}

// generateReport fetches fresh candles for the session token, overlays the
// indicators present in the graph, and renders the session chart.
func (s *Server) generateReport(c *gin.Context) {
	snap := s.session.Status()
	cfg := snap.Config
	if cfg.Token == "" {
		cfg = graph.Compile(s.graphs.Snapshot())
	}
	symbol := market.SymbolFor(cfg.Token)
	interval := s.cfg.Market.KlineInterval

	ctx := c.Request.Context()
	candles, err := s.source.FetchCandles(ctx, symbol, interval, s.cfg.Market.MaxCached)
	if err != nil {
		logger.Warnf("candle fetch failed, rendering without market data: %v", err)
	} else if err := s.candles.Put(ctx, symbol, interval, candles, s.cfg.Market.MaxCached); err != nil {
		logger.Warnf("cache candles: %v", err)
	}
	cached, _ := s.candles.Get(ctx, symbol, interval)

	in := report.Input{
		Symbol:     symbol,
		Interval:   interval,
		Candles:    cached,
		Indicators: market.ComputeIndicators(cached, indicatorSpecs(s.graphs.Snapshot())),
		Iterations: snap.Iterations,
		Markers:    s.session.Markers(),
		PnLSeries:  pnlSeries(snap.Iterations, s.cfg.Agent.InitialInvestment),
	}
	htmlPath, err := s.reports.Render(in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"html": htmlPath}
	if s.cfg.Report.EnableSnapshot {
		if pngPath, err := report.Snapshot(ctx, htmlPath); err != nil {
			logger.Warnf("snapshot failed: %v", err)
		} else {
			resp["png"] = pngPath
		}
	}
	c.JSON(http.StatusOK, resp)
}

// indicatorSpecs collects indicator blocks present in the graph.
func indicatorSpecs(g graph.Graph) []market.IndicatorSpec {
	var specs []market.IndicatorSpec
	for _, n := range g.Nodes {
		switch n.Kind {
		case "SMA", "EMA", "RSI":
			specs = append(specs, market.IndicatorSpec{
				Kind:   n.Kind,
				Period: int(block.NumberParam(n.Params, "period", 14)),
			})
		case "MACD":
			specs = append(specs, market.IndicatorSpec{
				Kind:   "MACD",
				Fast:   int(block.NumberParam(n.Params, "fast", 12)),
				Slow:   int(block.NumberParam(n.Params, "slow", 26)),
				Signal: int(block.NumberParam(n.Params, "signal", 9)),
			})
		}
	}
	return specs
}

// pnlSeries replays the iteration log through a fresh projector to get the
// displayed cumulative P&L after each poll.
func pnlSeries(results []agent.PollResult, initialInvestment float64) []float64 {
	p := agent.NewProjector(initialInvestment)
	out := make([]float64, 0, len(results))
	for _, r := range results {
		p.Apply(r)
		out = append(out, p.Displayed())
	}
	return out
}
