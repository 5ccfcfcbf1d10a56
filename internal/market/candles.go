package market

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Candle is one OHLCV bar.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// CandleStore reads and writes a symbol+interval series.
type CandleStore interface {
	Put(ctx context.Context, symbol, interval string, cs []Candle, max int) error
	Get(ctx context.Context, symbol, interval string) ([]Candle, error)
}

// MemoryCandleStore keeps the most recent bars per series in memory.
type MemoryCandleStore struct {
	mu   sync.RWMutex
	data map[string][]Candle
}

var _ CandleStore = (*MemoryCandleStore)(nil)

func NewMemoryCandleStore() *MemoryCandleStore {
	return &MemoryCandleStore{data: make(map[string][]Candle)}
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// Put appends bars and trims the series to max.
func (s *MemoryCandleStore) Put(ctx context.Context, symbol, interval string, cs []Candle, max int) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol and interval must not be empty")
	}
	if len(cs) == 0 {
		return nil
	}
	if max <= 0 {
		max = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(symbol, interval)
	cur := append(s.data[k], cs...)
	if len(cur) > max {
		cur = cur[len(cur)-max:]
	}
	s.data[k] = cur
	return nil
}

// Get returns a copy of the series.
func (s *MemoryCandleStore) Get(ctx context.Context, symbol, interval string) ([]Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.data[key(symbol, interval)]
	out := make([]Candle, len(cur))
	copy(out, cur)
	return out, nil
}

// SymbolFor maps a strategy token to its USDT spot symbol.
func SymbolFor(token string) string {
	return strings.ToUpper(strings.TrimSpace(token)) + "USDT"
}
