package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutTrimsToMax(t *testing.T) {
	s := NewMemoryCandleStore()
	ctx := context.Background()

	var cs []Candle
	for i := 0; i < 10; i++ {
		cs = append(cs, Candle{OpenTime: int64(i), Close: float64(i)})
	}
	require.NoError(t, s.Put(ctx, "ETHUSDT", "5m", cs, 4))

	got, err := s.Get(ctx, "ETHUSDT", "5m")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 6.0, got[0].Close, "oldest bars trimmed")
}

func TestPutValidation(t *testing.T) {
	s := NewMemoryCandleStore()
	assert.Error(t, s.Put(context.Background(), "", "5m", []Candle{{}}, 10))
	assert.NoError(t, s.Put(context.Background(), "ETHUSDT", "5m", nil, 10))
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewMemoryCandleStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "BTCUSDT", "1m", []Candle{{Close: 1}}, 10))

	got, err := s.Get(ctx, "BTCUSDT", "1m")
	require.NoError(t, err)
	got[0].Close = 99

	again, err := s.Get(ctx, "BTCUSDT", "1m")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0].Close)
}

func TestSymbolFor(t *testing.T) {
	assert.Equal(t, "ETHUSDT", SymbolFor("eth"))
	assert.Equal(t, "BTCUSDT", SymbolFor(" BTC "))
}

func TestComputeIndicators(t *testing.T) {
	candles := make([]Candle, 30)
	for i := range candles {
		candles[i].Close = float64(100 + i)
	}

	series := ComputeIndicators(candles, []IndicatorSpec{
		{Kind: "SMA", Period: 5},
		{Kind: "RSI", Period: 14},
		{Kind: "MACD", Fast: 3, Slow: 6, Signal: 2},
	})
	require.Len(t, series, 5, "SMA + RSI + three MACD series")
	assert.Equal(t, "SMA(5)", series[0].Name)
	assert.Len(t, series[0].Values, 30)
	// SMA of a linear ramp equals the midpoint of its window.
	assert.InDelta(t, 127.0, series[0].Values[29], 1e-9)
}

func TestComputeIndicatorsSkipsShortRuns(t *testing.T) {
	candles := []Candle{{Close: 1}, {Close: 2}}
	series := ComputeIndicators(candles, []IndicatorSpec{
		{Kind: "SMA", Period: 20},
		{Kind: "MACD", Fast: 12, Slow: 26, Signal: 9},
	})
	assert.Empty(t, series)
}
