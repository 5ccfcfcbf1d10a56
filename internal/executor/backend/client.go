package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sentenex/internal/config"
	"sentenex/internal/strategy"
)

// Client wraps the execution backend's REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient constructs a backend client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.Backend.APIURL)
	if raw == "" {
		return nil, fmt.Errorf("backend.api_url must not be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend.api_url: %w", err)
	}
	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsClient reports whether the backend rejected the request itself. Client
// errors are never retried; a malformed request cannot succeed on replay.
func (e *APIError) IsClient() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ActivateResponse echoes the accepted config along with the session id.
type ActivateResponse struct {
	SessionID   string `json:"session_id"`
	ActivatedAt string `json:"activated_at"`
}

// DeactivateResponse acknowledges a deactivation.
type DeactivateResponse struct {
	SessionID     string `json:"session_id"`
	DeactivatedAt string `json:"deactivated_at"`
}

// AnalyzeResponse is one agent iteration as reported by the backend.
type AnalyzeResponse struct {
	PollID     string `json:"_poll_id"`
	Iteration  int    `json:"iteration"`
	Timestamp  string `json:"timestamp"`
	MarketData struct {
		Price float64 `json:"price"`
	} `json:"market_data"`
	Recommendation      string   `json:"recommendation"`
	PositionStatus      string   `json:"position_status,omitempty"`
	PnLUSD              *float64 `json:"pnl_usd,omitempty"`
	PnLPct              *float64 `json:"pnl_pct,omitempty"`
	StopLossTriggered   bool     `json:"stop_loss_triggered"`
	TakeProfitTriggered bool     `json:"take_profit_triggered"`
	AgentStatus         string   `json:"agent_status"`
}

type activatePayload struct {
	Token           string  `json:"token"`
	Stablecoin      string  `json:"stablecoin"`
	PortfolioAmount float64 `json:"portfolio_amount"`
	RiskLevel       string  `json:"risk_level"`
	Model           string  `json:"model,omitempty"`
	QuantAlgo       string  `json:"quant_algo,omitempty"`
	StopLoss        string  `json:"stop_loss,omitempty"`
	TakeProfit      string  `json:"take_profit,omitempty"`
}

type deactivatePayload struct {
	Token           string  `json:"token"`
	Stablecoin      string  `json:"stablecoin"`
	PortfolioAmount float64 `json:"portfolio_amount"`
}

// Activate starts a remote agent for the given config.
func (c *Client) Activate(ctx context.Context, cfg strategy.ExecutionConfig) (*ActivateResponse, error) {
	payload := activatePayload{
		Token:           cfg.Token,
		Stablecoin:      cfg.Stablecoin,
		PortfolioAmount: cfg.PortfolioAmount,
		RiskLevel:       string(cfg.RiskLevel),
		Model:           cfg.Model,
		QuantAlgo:       cfg.QuantAlgo,
		StopLoss:        cfg.StopLoss,
		TakeProfit:      cfg.TakeProfit,
	}
	var resp ActivateResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/activate", payload, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("backend returned no session_id")
	}
	return &resp, nil
}

// Deactivate asks the backend to stop the agent. Best effort; callers log
// failures and proceed.
func (c *Client) Deactivate(ctx context.Context, cfg strategy.ExecutionConfig) (*DeactivateResponse, error) {
	payload := deactivatePayload{
		Token:           cfg.Token,
		Stablecoin:      cfg.Stablecoin,
		PortfolioAmount: cfg.PortfolioAmount,
	}
	var resp DeactivateResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/deactivate", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Analyze fetches the next agent iteration. The cursor from the previous
// response, when non-empty, is threaded through as the poll_id query
// parameter. Risk level is translated to the backend vocabulary here.
func (c *Client) Analyze(ctx context.Context, cfg strategy.ExecutionConfig, cursor string) (*AnalyzeResponse, error) {
	payload := activatePayload{
		Token:           cfg.Token,
		Stablecoin:      cfg.Stablecoin,
		PortfolioAmount: cfg.PortfolioAmount,
		RiskLevel:       cfg.RiskLevel.BackendRiskLevel(),
		Model:           cfg.Model,
		QuantAlgo:       cfg.QuantAlgo,
		StopLoss:        cfg.StopLoss,
		TakeProfit:      cfg.TakeProfit,
	}
	path := "/api/analyze"
	if cursor != "" {
		path += "?poll_id=" + url.QueryEscape(cursor)
	}
	var resp AnalyzeResponse
	if err := c.doRequest(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any, out any) error {
	if c == nil {
		return fmt.Errorf("backend client not initialized")
	}
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path: %w", err)
	}
	endpoint := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}
