// Package telegram provides Telegram notification services.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for Telegram notification operations.
type Service interface {
	SendNotification(ctx context.Context, cfg models.TelegramConfig, relay models.WakeRelay) (*models.TelegramResult, error)
}

// HTTPClient allows mocking HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Impl implements the Telegram Service interface.
type Impl struct {
	httpClient HTTPClient
	logger     zerolog.Logger
	baseURL    string
}

// New creates a new Telegram service. The short timeout keeps a slow API
// from holding up the relay loop for long.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger:  logger,
		baseURL: "https://api.telegram.org",
	}
}

// NewWithClient creates a new Telegram service with a custom HTTP client (for testing).
func NewWithClient(logger zerolog.Logger, httpClient HTTPClient, baseURL string) *Impl {
	return &Impl{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// sendMessageRequest is the request body for Telegram sendMessage API.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendNotification reports a relayed magic packet via Telegram.
func (s *Impl) SendNotification(ctx context.Context, cfg models.TelegramConfig, relay models.WakeRelay) (*models.TelegramResult, error) {
	result := &models.TelegramResult{}

	s.logger.Debug().
		Str("chat_id", cfg.ChatID).
		Str("mac", relay.MAC).
		Msg("sending Telegram notification")

	reqBody := sendMessageRequest{
		ChatID:    cfg.ChatID,
		Text:      formatMessage(relay),
		ParseMode: "HTML",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal request: %w", err)
		return result, nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		result.Error = fmt.Errorf("failed to create request: %w", err)
		return result, nil
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("failed to send request: %w", err)
		return result, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Errorf("telegram API returned status %d", resp.StatusCode)
		return result, nil
	}

	result.MessageSent = true
	s.logger.Debug().Msg("Telegram notification sent successfully")

	return result, nil
}

// Notifier binds a Service to one chat so it can be handed to the relay.
type Notifier struct {
	svc Service
	cfg models.TelegramConfig
}

// NewNotifier creates a Notifier sending through svc with cfg.
func NewNotifier(svc Service, cfg models.TelegramConfig) *Notifier {
	return &Notifier{svc: svc, cfg: cfg}
}

// NotifyRelay sends one message for a forwarded packet.
func (n *Notifier) NotifyRelay(ctx context.Context, relay models.WakeRelay) error {
	result, err := n.svc.SendNotification(ctx, n.cfg, relay)
	if err != nil {
		return err
	}
	return result.Error
}

func formatMessage(relay models.WakeRelay) string {
	var b strings.Builder

	if relay.Sent == len(relay.Destinations) {
		b.WriteString("<b>Wake-on-LAN relayed</b>\n\n")
	} else {
		b.WriteString("<b>Wake-on-LAN partially relayed</b>\n\n")
	}

	b.WriteString(fmt.Sprintf("<b>MAC:</b> <code>%s</code>\n", escapeHTML(relay.MAC)))
	b.WriteString(fmt.Sprintf("<b>From:</b> %s\n", escapeHTML(relay.Sender)))
	if !relay.Time.IsZero() {
		b.WriteString(fmt.Sprintf("<b>Time:</b> %s\n", relay.Time.Format("2006-01-02 15:04:05")))
	}
	b.WriteString(fmt.Sprintf("<b>Sent:</b> %d/%d\n", relay.Sent, len(relay.Destinations)))
	for _, dst := range relay.Destinations {
		b.WriteString(fmt.Sprintf("  • %s\n", escapeHTML(dst)))
	}

	return b.String()
}

// escapeHTML escapes HTML special characters.
func escapeHTML(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
