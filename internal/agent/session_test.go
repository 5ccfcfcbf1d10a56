package agent

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentenex/internal/executor/backend"
	"sentenex/internal/strategy"
)

type fakeBackend struct {
	mu sync.Mutex

	activateErr error
	analyzeFn   func(call int, cursor string) (*backend.AnalyzeResponse, error)

	activateCalls   atomic.Int64
	deactivateCalls atomic.Int64
	analyzeCalls    atomic.Int64
}

func (f *fakeBackend) Activate(ctx context.Context, cfg strategy.ExecutionConfig) (*backend.ActivateResponse, error) {
	f.activateCalls.Add(1)
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	return &backend.ActivateResponse{SessionID: "sess-1", ActivatedAt: "2026-08-31T00:00:00Z"}, nil
}

func (f *fakeBackend) Deactivate(ctx context.Context, cfg strategy.ExecutionConfig) (*backend.DeactivateResponse, error) {
	f.deactivateCalls.Add(1)
	return &backend.DeactivateResponse{}, nil
}

func (f *fakeBackend) Analyze(ctx context.Context, cfg strategy.ExecutionConfig, cursor string) (*backend.AnalyzeResponse, error) {
	n := f.analyzeCalls.Add(1)
	f.mu.Lock()
	fn := f.analyzeFn
	f.mu.Unlock()
	if fn == nil {
		return &backend.AnalyzeResponse{Recommendation: "HOLD", AgentStatus: "active", Iteration: int(n)}, nil
	}
	return fn(int(n), cursor)
}

func validConfig() strategy.ExecutionConfig {
	cfg := strategy.DefaultConfig()
	return cfg
}

func TestActivateRejectsInvalidConfigWithoutNetwork(t *testing.T) {
	fb := &fakeBackend{}
	s := NewSession(fb, 5*time.Millisecond, 1000, nil)

	cfg := validConfig()
	cfg.PortfolioAmount = 0
	require.Error(t, s.Activate(context.Background(), cfg))

	cfg = validConfig()
	cfg.Token = ""
	require.Error(t, s.Activate(context.Background(), cfg))

	assert.Equal(t, int64(0), fb.activateCalls.Load())
	assert.Equal(t, "idle", s.Status().State)
}

func TestActivateFailureReturnsToIdle(t *testing.T) {
	fb := &fakeBackend{activateErr: &backend.APIError{StatusCode: http.StatusBadGateway}}
	s := NewSession(fb, 5*time.Millisecond, 1000, nil)

	require.Error(t, s.Activate(context.Background(), validConfig()))
	assert.Equal(t, "idle", s.Status().State)
	assert.Empty(t, s.Status().SessionID)
}

func TestPollLoopAccumulatesAndThreadsCursor(t *testing.T) {
	pnl := []float64{5, 8, 8}
	fb := &fakeBackend{}
	var cursors []string
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		fb.mu.Lock()
		cursors = append(cursors, cursor)
		fb.mu.Unlock()
		if call > 3 {
			return &backend.AnalyzeResponse{Recommendation: "HOLD", AgentStatus: "active", Iteration: call}, nil
		}
		r := &backend.AnalyzeResponse{
			PollID:         "cursor-" + string(rune('0'+call)),
			Iteration:      call,
			Recommendation: "LONG",
			PositionStatus: "ENTRY",
			AgentStatus:    "active",
			PnLUSD:         &pnl[call-1],
		}
		if call == 3 {
			r.PositionStatus = "EXIT"
			r.Recommendation = "EXIT"
		}
		return r, nil
	}

	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	assert.Equal(t, "active", s.Status().State)
	assert.Equal(t, "sess-1", s.Status().SessionID)

	require.Eventually(t, func() bool {
		return len(s.Status().Iterations) >= 3
	}, time.Second, time.Millisecond)

	snap := s.Status()
	assert.Equal(t, 8.0, snap.RealizedPnL)
	assert.Equal(t, 8.0, snap.DisplayedPnL)
	assert.Equal(t, 1008.0, snap.PortfolioValue)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, "", cursors[0], "first poll carries no cursor")
	assert.Equal(t, "cursor-1", cursors[1])
	assert.Equal(t, "cursor-2", cursors[2])
}

func TestStopHaltsPollingAndDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	fb := &fakeBackend{}
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		<-release
		five := 5.0
		return &backend.AnalyzeResponse{Iteration: call, Recommendation: "LONG", PositionStatus: "ENTRY", AgentStatus: "active", PnLUSD: &five}, nil
	}

	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	require.Eventually(t, func() bool { return fb.analyzeCalls.Load() >= 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Stop())
	close(release)

	time.Sleep(30 * time.Millisecond)
	snap := s.Status()
	assert.Equal(t, "idle", snap.State)
	assert.Empty(t, snap.Iterations, "in-flight response from before stop is discarded")
	assert.Equal(t, 0.0, snap.DisplayedPnL)
	assert.GreaterOrEqual(t, fb.deactivateCalls.Load(), int64(1))

	calls := fb.analyzeCalls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, fb.analyzeCalls.Load(), "no further polls after stop")
}

func TestStaleResponseDoesNotUnblockNextSession(t *testing.T) {
	// A poll from a stopped session that resolves after a re-activation must
	// not clear the new session's in-flight guard, or the next tick would
	// overlap the new session's outstanding poll.
	releaseFirst := make(chan struct{})
	var outstanding, maxOutstanding atomic.Int64
	fb := &fakeBackend{}
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		if call == 1 {
			<-releaseFirst
			return &backend.AnalyzeResponse{Iteration: call, Recommendation: "HOLD", AgentStatus: "active"}, nil
		}
		n := outstanding.Add(1)
		defer outstanding.Add(-1)
		for {
			m := maxOutstanding.Load()
			if n <= m || maxOutstanding.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(60 * time.Millisecond)
		return &backend.AnalyzeResponse{Iteration: call, Recommendation: "HOLD", AgentStatus: "active"}, nil
	}

	s := NewSession(fb, 10*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	require.Eventually(t, func() bool { return fb.analyzeCalls.Load() >= 1 }, time.Second, time.Millisecond)

	// Restart while the first session's poll is still held, then let the
	// stale response land on the new session.
	require.NoError(t, s.Stop())
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	close(releaseFirst)

	require.Eventually(t, func() bool { return fb.analyzeCalls.Load() >= 4 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, int64(1), maxOutstanding.Load(), "at most one poll in flight per session")
	require.NoError(t, s.Stop())
}

func TestClientErrorStopsSession(t *testing.T) {
	fb := &fakeBackend{}
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		return nil, &backend.APIError{StatusCode: http.StatusBadRequest, Message: "bad"}
	}

	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))

	require.Eventually(t, func() bool { return s.Status().State == "stopped" }, time.Second, time.Millisecond)

	calls := fb.analyzeCalls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, fb.analyzeCalls.Load(), "client errors are not retried")
}

func TestTransientErrorRetries(t *testing.T) {
	fb := &fakeBackend{}
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		if call < 3 {
			return nil, &backend.APIError{StatusCode: http.StatusInternalServerError}
		}
		return &backend.AnalyzeResponse{Iteration: call, Recommendation: "HOLD", AgentStatus: "active"}, nil
	}

	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))

	require.Eventually(t, func() bool {
		snap := s.Status()
		return snap.State == "active" && len(snap.Iterations) >= 1
	}, time.Second, time.Millisecond)
}

func TestStopLossTriggerSynthesizesExit(t *testing.T) {
	fb := &fakeBackend{}
	loss := -20.0
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		return &backend.AnalyzeResponse{
			Iteration:         1,
			Timestamp:         "t1",
			Recommendation:    "HOLD",
			PositionStatus:    "HOLD",
			AgentStatus:       "active",
			StopLossTriggered: true,
			PnLUSD:            &loss,
		}, nil
	}

	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))

	require.Eventually(t, func() bool { return s.Status().State == "stopped" }, time.Second, time.Millisecond)

	snap := s.Status()
	require.Len(t, snap.Iterations, 2)
	exit := snap.Iterations[1]
	assert.Equal(t, "EXIT", exit.PositionStatus)
	assert.Equal(t, 1, exit.Iteration)
	assert.Equal(t, "t1", exit.Timestamp)
	assert.Equal(t, -20.0, snap.RealizedPnL)

	ms := s.Markers()
	require.NotEmpty(t, ms)
	assert.Equal(t, "square", ms[len(ms)-1].Shape)
}

func TestRemoteStoppedHaltsLoop(t *testing.T) {
	fb := &fakeBackend{}
	fb.analyzeFn = func(call int, cursor string) (*backend.AnalyzeResponse, error) {
		return &backend.AnalyzeResponse{Iteration: call, Recommendation: "HOLD", AgentStatus: "stopped"}, nil
	}

	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	require.Eventually(t, func() bool { return s.Status().State == "stopped" }, time.Second, time.Millisecond)

	// Log is retained in Stopped for inspection; Stop clears it.
	assert.NotEmpty(t, s.Status().Iterations)
	require.NoError(t, s.Stop())
	assert.Equal(t, "idle", s.Status().State)
	assert.Empty(t, s.Status().Iterations)
}

func TestPauseKeepsLog(t *testing.T) {
	fb := &fakeBackend{}
	s := NewSession(fb, 5*time.Millisecond, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	require.Eventually(t, func() bool { return len(s.Status().Iterations) >= 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Pause())
	snap := s.Status()
	assert.Equal(t, "paused", snap.State)
	assert.Equal(t, "sess-1", snap.SessionID)
	assert.NotEmpty(t, snap.Iterations)
	assert.GreaterOrEqual(t, fb.deactivateCalls.Load(), int64(1))

	calls := fb.analyzeCalls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, fb.analyzeCalls.Load())
}

func TestActivateTwiceRejected(t *testing.T) {
	fb := &fakeBackend{}
	s := NewSession(fb, time.Hour, 1000, nil)
	require.NoError(t, s.Activate(context.Background(), validConfig()))
	assert.Error(t, s.Activate(context.Background(), validConfig()))
}
