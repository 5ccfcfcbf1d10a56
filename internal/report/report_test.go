package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentenex/internal/agent"
	"sentenex/internal/market"
)

func TestRenderWritesHTML(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	five := 5.0
	in := Input{
		Symbol:   "ETHUSDT",
		Interval: "5m",
		Candles: []market.Candle{
			{CloseTime: 1700000000000, Open: 100, High: 110, Low: 95, Close: 105, Volume: 10},
			{CloseTime: 1700000300000, Open: 105, High: 112, Low: 101, Close: 108, Volume: 12},
		},
		Indicators: []market.Series{{Name: "SMA(2)", Values: []float64{0, 102.5}}},
		Iterations: []agent.PollResult{
			{Iteration: 1, Price: 105, Recommendation: "LONG", PositionStatus: "ENTRY", PnLUSD: &five},
			{Iteration: 2, Price: 108, Recommendation: "EXIT", PositionStatus: "EXIT", PnLUSD: &five},
		},
		Markers: []agent.Marker{
			{Iteration: 1, Price: 105, Shape: "arrowUp", Label: "LONG", Color: "#26a69a"},
			{Iteration: 2, Price: 108, Shape: "square", Label: "EXIT", Color: "#ffa726"},
		},
		PnLSeries: []float64{5, 5},
	}

	path, err := g.Render(in)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.True(t, strings.Contains(html, "ETHUSDT"))
	assert.True(t, strings.Contains(html, "SMA(2)"))
	assert.True(t, strings.Contains(html, "Cumulative"))
}

func TestRenderEmptyInput(t *testing.T) {
	g := NewGenerator(t.TempDir())
	path, err := g.Render(Input{Symbol: "BTCUSDT"})
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
