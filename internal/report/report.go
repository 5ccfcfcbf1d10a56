package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"sentenex/internal/agent"
	"sentenex/internal/market"
)

// Input is everything one report render needs.
type Input struct {
	Symbol     string
	Interval   string
	Candles    []market.Candle
	Indicators []market.Series
	Iterations []agent.PollResult
	Markers    []agent.Marker
	PnLSeries  []float64
}

// Generator renders a session report as a standalone HTML page: the market
// kline with indicator overlays, the agent's price track with signal
// markers, and the cumulative P&L curve.
type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// Render writes the report and returns the HTML file path.
func (g *Generator) Render(in Input) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	page := components.NewPage()
	page.SetPageTitle(fmt.Sprintf("%s session report", in.Symbol))
	if len(in.Candles) > 0 {
		page.AddCharts(g.klineChart(in))
	}
	if len(in.Iterations) > 0 {
		page.AddCharts(g.signalChart(in), g.pnlChart(in))
	}

	name := fmt.Sprintf("report_%s_%s.html", in.Symbol, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(g.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, nil
}

func (g *Generator) klineChart(in Input) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s %s", in.Symbol, in.Interval)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	x := make([]string, 0, len(in.Candles))
	bars := make([]opts.KlineData, 0, len(in.Candles))
	for _, c := range in.Candles {
		x = append(x, time.UnixMilli(c.CloseTime).UTC().Format("01-02 15:04"))
		bars = append(bars, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}
	kline.SetXAxis(x).AddSeries(in.Symbol, bars)

	for _, series := range in.Indicators {
		line := charts.NewLine()
		points := make([]opts.LineData, 0, len(series.Values))
		for _, v := range series.Values {
			points = append(points, opts.LineData{Value: v})
		}
		line.SetXAxis(x).AddSeries(series.Name, points,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		kline.Overlap(line)
	}
	return kline
}

// signalChart tracks the price the agent saw each iteration and overlays the
// entry/exit markers at their iterations.
func (g *Generator) signalChart(in Input) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Agent signals"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	x := make([]string, 0, len(in.Iterations))
	prices := make([]opts.LineData, 0, len(in.Iterations))
	for _, r := range in.Iterations {
		x = append(x, fmt.Sprintf("#%d", r.Iteration))
		prices = append(prices, opts.LineData{Value: r.Price})
	}
	line.SetXAxis(x).AddSeries("price", prices)

	groups := map[string][]opts.ScatterData{}
	for _, m := range in.Markers {
		groups[m.Label] = append(groups[m.Label], opts.ScatterData{
			Value:        []any{fmt.Sprintf("#%d", m.Iteration), m.Price},
			Symbol:       symbolFor(m.Shape),
			SymbolSize:   14,
			SymbolRotate: int(rotateFor(m.Shape)),
		})
	}
	for _, label := range []string{"LONG", "SHORT", "EXIT"} {
		data, ok := groups[label]
		if !ok {
			continue
		}
		scatter := charts.NewScatter()
		scatter.AddSeries(label, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFor(label)}))
		line.Overlap(scatter)
	}
	return line
}

func (g *Generator) pnlChart(in Input) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cumulative P&L (USD)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	x := make([]string, 0, len(in.PnLSeries))
	points := make([]opts.LineData, 0, len(in.PnLSeries))
	for i, v := range in.PnLSeries {
		x = append(x, fmt.Sprintf("#%d", i+1))
		points = append(points, opts.LineData{Value: v})
	}
	line.SetXAxis(x).AddSeries("pnl", points,
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}))
	return line
}

func symbolFor(shape string) string {
	switch shape {
	case "arrowUp", "arrowDown":
		return "triangle"
	case "square":
		return "rect"
	}
	return "circle"
}

func rotateFor(shape string) float32 {
	if shape == "arrowDown" {
		return 180
	}
	return 0
}

func colorFor(label string) string {
	switch label {
	case "LONG":
		return "#26a69a"
	case "SHORT":
		return "#ef5350"
	default:
		return "#ffa726"
	}
}
