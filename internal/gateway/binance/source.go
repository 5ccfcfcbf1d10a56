package binance

import (
	"context"
	"fmt"
	"strconv"

	binance "github.com/adshao/go-binance/v2"

	"sentenex/internal/market"
)

// Source fetches candles from Binance's public REST API.
type Source struct {
	client *binance.Client
}

// NewSource builds an unauthenticated spot client. baseURL overrides the
// default endpoint, used in tests and for mirror hosts.
func NewSource(baseURL string) *Source {
	c := binance.NewClient("", "")
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	return &Source{client: c}
}

// FetchCandles pulls up to limit closed bars for symbol at interval.
func (s *Source) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch klines %s %s: %w", symbol, interval, err)
	}

	out := make([]market.Candle, 0, len(klines))
	for _, k := range klines {
		c := market.Candle{OpenTime: k.OpenTime, CloseTime: k.CloseTime}
		c.Open, _ = strconv.ParseFloat(k.Open, 64)
		c.High, _ = strconv.ParseFloat(k.High, 64)
		c.Low, _ = strconv.ParseFloat(k.Low, 64)
		c.Close, _ = strconv.ParseFloat(k.Close, 64)
		c.Volume, _ = strconv.ParseFloat(k.Volume, 64)
		out = append(out, c)
	}
	return out, nil
}
