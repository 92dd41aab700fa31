package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	telegramBaseURL = "https://api.telegram.org"

	// DefaultTimeout bounds a single sendMessage call.
	DefaultTimeout = 10 * time.Second
)

// Telegram posts messages through the Bot API sendMessage method.
type Telegram struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
	logger     Logger
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(token, chatID string, logger Logger) *Telegram {
	return &Telegram{
		token:      token,
		chatID:     chatID,
		baseURL:    telegramBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// Notify implements Notifier. Errors are logged and dropped.
func (t *Telegram) Notify(ctx context.Context, message string) {
	if err := t.Send(ctx, message); err != nil && t.logger != nil {
		t.logger.Printf("telegram notification failed: %v", err)
	}
}

// Send delivers one message and reports failures.
func (t *Telegram) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: t.chatID, Text: message})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return t.do(req)
}

func (t *Telegram) do(req *http.Request) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		return fmt.Errorf("send message: %s", redact(err.Error(), t.token))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.OK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, out.Description)
	}

	return nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<redacted>")
}
