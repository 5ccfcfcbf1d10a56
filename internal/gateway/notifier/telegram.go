package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sentenex/internal/logger"
	"sentenex/internal/pkg/format"
	"sentenex/internal/strategy"
)

// Telegram pushes session events to a chat via the Bot API. A nil *Telegram
// is a no-op, so callers never need to branch on whether notifications are
// enabled.
type Telegram struct {
	botToken   string
	chatID     string
	httpClient *http.Client
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one message. Failures are logged, never returned; a flaky
// notifier must not affect the session.
func (t *Telegram) Send(text string) {
	if t == nil || t.botToken == "" || t.chatID == "" {
		return
	}
	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.httpClient.Do(req)
	if err != nil {
		logger.Warnf("telegram send failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warnf("telegram send failed: %s", resp.Status)
	}
}

// AgentActivated implements agent.EventSink.
func (t *Telegram) AgentActivated(cfg strategy.ExecutionConfig, sessionID string) {
	t.Send(fmt.Sprintf("*Agent activated*\nsession: `%s`\ntoken: %s/%s\namount: %s\nrisk: %s",
		sessionID, cfg.Token, cfg.Stablecoin, format.Float(cfg.PortfolioAmount, 2), cfg.RiskLevel))
}

// AgentStopped implements agent.EventSink.
func (t *Telegram) AgentStopped(reason string) {
	t.Send(fmt.Sprintf("*Agent stopped*\nreason: %s", reason))
}
