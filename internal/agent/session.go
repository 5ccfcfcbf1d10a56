package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sentenex/internal/executor/backend"
	"sentenex/internal/logger"
	"sentenex/internal/strategy"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActivating
	StateActive
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

var (
	// ErrInvalidConfig rejects an activation before any network call.
	ErrInvalidConfig = errors.New("invalid execution config")
	// ErrNotIdle rejects an activation while a session is already running.
	ErrNotIdle = errors.New("session is not idle")
)

// Backend is the slice of the execution backend the session needs.
type Backend interface {
	Activate(ctx context.Context, cfg strategy.ExecutionConfig) (*backend.ActivateResponse, error)
	Deactivate(ctx context.Context, cfg strategy.ExecutionConfig) (*backend.DeactivateResponse, error)
	Analyze(ctx context.Context, cfg strategy.ExecutionConfig, cursor string) (*backend.AnalyzeResponse, error)
}

var _ Backend = (*backend.Client)(nil)

// EventSink receives session lifecycle notifications. Implementations must
// not call back into the session.
type EventSink interface {
	AgentActivated(cfg strategy.ExecutionConfig, sessionID string)
	AgentStopped(reason string)
}

// Snapshot is a detached view of the session for status reporting.
type Snapshot struct {
	State          string                   `json:"state"`
	SessionID      string                   `json:"session_id,omitempty"`
	Config         strategy.ExecutionConfig `json:"config"`
	ActivatedAt    string                   `json:"activated_at,omitempty"`
	Iterations     []PollResult             `json:"iterations"`
	RealizedPnL    float64                  `json:"realized_pnl"`
	DisplayedPnL   float64                  `json:"displayed_pnl"`
	PortfolioValue float64                  `json:"portfolio_value"`
}

// Session drives one activate/poll/deactivate lifecycle against the
// execution backend.
//
// Exactly one poll is in flight at a time. The timer keeps a fixed cadence;
// a tick that fires while a request is outstanding is skipped, not queued,
// so cumulative P&L updates never apply out of order. Every stop or pause
// bumps the generation counter so a response that arrives after the decision
// is discarded instead of mutating the log.
type Session struct {
	backend           Backend
	interval          time.Duration
	initialInvestment float64
	sink              EventSink

	mu          sync.Mutex
	state       State
	cfg         strategy.ExecutionConfig
	sessionID   string
	activatedAt string
	cursor      string
	log         []PollResult
	projector   *Projector
	generation  uint64
	inFlight    bool
	timer       *time.Timer
}

// NewSession wires a session driver. sink may be nil.
func NewSession(b Backend, interval time.Duration, initialInvestment float64, sink EventSink) *Session {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Session{
		backend:           b,
		interval:          interval,
		initialInvestment: initialInvestment,
		sink:              sink,
		projector:         NewProjector(initialInvestment),
	}
}

// Activate starts the remote agent with a snapshot of cfg and begins the
// poll loop. Invalid configs are rejected before any network call. The call
// resolves within one activation round trip; the session ends up Active or
// back in Idle, never stuck in Activating.
func (s *Session) Activate(ctx context.Context, cfg strategy.ExecutionConfig) error {
	if cfg.PortfolioAmount <= 0 {
		return fmt.Errorf("%w: portfolio amount must be positive, got %v", ErrInvalidConfig, cfg.PortfolioAmount)
	}
	if cfg.Token == "" {
		return fmt.Errorf("%w: token must not be empty", ErrInvalidConfig)
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotIdle, s.state)
	}
	s.state = StateActivating
	s.mu.Unlock()

	resp, err := s.backend.Activate(ctx, cfg)

	s.mu.Lock()
	if s.state != StateActivating {
		// Stopped while the activation call was outstanding.
		s.mu.Unlock()
		if err == nil {
			s.deactivateBestEffort(cfg)
		}
		return fmt.Errorf("session reset during activation")
	}
	if err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		return fmt.Errorf("activate agent: %w", err)
	}

	s.state = StateActive
	s.cfg = cfg
	s.sessionID = resp.SessionID
	s.activatedAt = resp.ActivatedAt
	s.cursor = ""
	s.log = nil
	s.projector = NewProjector(s.initialInvestment)
	s.generation++
	gen := s.generation

	// First poll fires immediately, the timer keeps the cadence after that.
	s.inFlight = true
	s.armTimerLocked(gen, s.interval)
	s.mu.Unlock()

	logger.Infof("agent session %s active: token=%s amount=%.2f risk=%s", resp.SessionID, cfg.Token, cfg.PortfolioAmount, cfg.RiskLevel)
	if s.sink != nil {
		s.sink.AgentActivated(cfg, resp.SessionID)
	}
	go s.analyze(gen, cfg, "")
	return nil
}

// Pause stops the poll loop and best-effort deactivates the remote agent.
// The session id and iteration log are kept for context.
func (s *Session) Pause() error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return fmt.Errorf("cannot pause from state %s", s.state)
	}
	s.generation++
	s.stopTimerLocked()
	s.state = StatePaused
	cfg := s.cfg
	s.mu.Unlock()

	logger.Infof("agent session paused")
	s.deactivateBestEffort(cfg)
	return nil
}

// Stop resets the session to Idle, clearing the session id, cursor and log.
// The remote deactivation is best effort.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return nil
	}
	wasRemote := s.state == StateActive || s.state == StatePaused || s.state == StateActivating
	s.generation++
	s.stopTimerLocked()
	cfg := s.cfg
	s.state = StateIdle
	s.sessionID = ""
	s.activatedAt = ""
	s.cursor = ""
	s.log = nil
	s.projector = NewProjector(s.initialInvestment)
	s.mu.Unlock()

	logger.Infof("agent session stopped")
	if wasRemote {
		s.deactivateBestEffort(cfg)
	}
	return nil
}

// Status returns a detached snapshot of the session.
func (s *Session) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:          s.state.String(),
		SessionID:      s.sessionID,
		Config:         s.cfg,
		ActivatedAt:    s.activatedAt,
		Iterations:     make([]PollResult, len(s.log)),
		RealizedPnL:    s.projector.Realized(),
		DisplayedPnL:   s.projector.Displayed(),
		PortfolioValue: s.projector.PortfolioValue(),
	}
	copy(snap.Iterations, s.log)
	return snap
}

// Markers returns the accumulated chart annotations.
func (s *Session) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projector.Markers()
}

func (s *Session) armTimerLocked(gen uint64, d time.Duration) {
	s.timer = time.AfterFunc(d, func() { s.tick(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if s.generation != gen || s.state != StateActive {
		s.mu.Unlock()
		return
	}
	// Fixed cadence: re-arm before polling so a slow request does not
	// stretch the interval.
	s.armTimerLocked(gen, s.interval)
	if s.inFlight {
		// Previous poll still outstanding; skip this tick.
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	cfg, cursor := s.cfg, s.cursor
	s.mu.Unlock()

	s.analyze(gen, cfg, cursor)
}

func (s *Session) analyze(gen uint64, cfg strategy.ExecutionConfig, cursor string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval*4)
	resp, err := s.backend.Analyze(ctx, cfg, cursor)
	cancel()
	s.apply(gen, resp, err)
}

func (s *Session) apply(gen uint64, resp *backend.AnalyzeResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.state != StateActive {
		// The session moved on while this poll was in flight. inFlight is
		// left alone: it belongs to the current generation, and a stale
		// response clearing it would let a tick overlap the live poll.
		return
	}
	s.inFlight = false

	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.IsClient() {
			logger.Errorf("analyze rejected, stopping session: %v", err)
			s.haltLocked(fmt.Sprintf("backend rejected poll: %v", err))
			return
		}
		logger.Warnf("analyze failed, retrying next tick: %v", err)
		return
	}

	r := PollResult{
		Iteration:           resp.Iteration,
		Timestamp:           resp.Timestamp,
		Price:               resp.MarketData.Price,
		Recommendation:      resp.Recommendation,
		PositionStatus:      resp.PositionStatus,
		PnLUSD:              resp.PnLUSD,
		PnLPct:              resp.PnLPct,
		StopLossTriggered:   resp.StopLossTriggered,
		TakeProfitTriggered: resp.TakeProfitTriggered,
		AgentStatus:         resp.AgentStatus,
	}
	s.log = append(s.log, r)
	if resp.PollID != "" {
		s.cursor = resp.PollID
	}
	s.projector.Apply(r)
	logger.Debugf("iteration %d: %s price=%.2f pnl=%.2f", r.Iteration, r.Recommendation, r.Price, s.projector.Displayed())

	triggered := r.StopLossTriggered || r.TakeProfitTriggered
	if !triggered && r.AgentStatus != "stopped" {
		return
	}

	if triggered && r.PositionStatus != "EXIT" {
		// The backend flagged a forced close without sending the EXIT record.
		exit := r
		exit.PositionStatus = "EXIT"
		exit.Recommendation = "EXIT"
		s.log = append(s.log, exit)
		s.projector.Apply(exit)
	}

	reason := "agent reported stopped"
	switch {
	case r.StopLossTriggered:
		reason = "stop loss triggered"
	case r.TakeProfitTriggered:
		reason = "take profit triggered"
	}
	logger.Infof("agent session halted: %s", reason)
	s.haltLocked(reason)
}

// haltLocked moves the session to Stopped, keeping the log for inspection.
// Caller holds s.mu.
func (s *Session) haltLocked(reason string) {
	s.generation++
	s.stopTimerLocked()
	s.state = StateStopped
	if s.sink != nil {
		sink := s.sink
		go sink.AgentStopped(reason)
	}
}

func (s *Session) deactivateBestEffort(cfg strategy.ExecutionConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.backend.Deactivate(ctx, cfg); err != nil {
		logger.Warnf("deactivate failed (ignored): %v", err)
	}
}
