package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"petmemorial/internal/config"
	"petmemorial/internal/pkg/logger"
)

// maxLength keeps messages within two concatenated SMS segments.
const maxLength = 306

// Sender delivers a text message.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// GatewaySender posts messages to an HTTP SMS gateway.
type GatewaySender struct {
	url    string
	apiKey string
	sender string
	client *http.Client
}

func NewGatewaySender(cfg config.SMSConfig) *GatewaySender {
	return &GatewaySender{
		url:    cfg.GatewayURL,
		apiKey: cfg.APIKey,
		sender: cfg.SenderName,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type gatewayRequest struct {
	APIKey     string `json:"apikey"`
	Number     string `json:"number"`
	Message    string `json:"message"`
	SenderName string `json:"sendername,omitempty"`
}

func (s *GatewaySender) Send(ctx context.Context, to, message string) error {
	number := NormalizePHNumber(to)
	if number == "" {
		return fmt.Errorf("invalid phone number %q", to)
	}

	body, err := json.Marshal(gatewayRequest{
		APIKey:     s.apiKey,
		Number:     number,
		Message:    Truncate(message),
		SenderName: s.sender,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// LogSender only logs. Used when no gateway is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(l *zap.Logger) *LogSender {
	return &LogSender{log: logger.OrNop(l)}
}

func (s *LogSender) Send(_ context.Context, to, message string) error {
	s.log.Info("sms not sent: gateway disabled", zap.String("to", to), zap.Int("length", len(message)))
	return nil
}

func New(cfg config.SMSConfig, l *zap.Logger) Sender {
	if cfg.Enabled() {
		return NewGatewaySender(cfg)
	}
	return NewLogSender(l)
}

// NormalizePHNumber converts local formats (09171234567, +639171234567, 9171234567)
// to the 639XXXXXXXXX form gateways expect. Returns "" for anything else.
func NormalizePHNumber(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 12 && strings.HasPrefix(d, "639"):
		return d
	case len(d) == 11 && strings.HasPrefix(d, "09"):
		return "63" + d[1:]
	case len(d) == 10 && strings.HasPrefix(d, "9"):
		return "63" + d
	default:
		return ""
	}
}

func Truncate(message string) string {
	runes := []rune(message)
	if len(runes) <= maxLength {
		return message
	}
	return string(runes[:maxLength-3]) + "..."
}

// BookingMessage builds the short text sent for booking and payment status changes.
func BookingMessage(firstName, petName, serviceName, status string, bookingID int64) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}

	var line string
	switch status {
	case "confirmed":
		line = fmt.Sprintf("your booking for %s (%s) is confirmed.", petName, serviceName)
	case "payment_confirmed":
		line = fmt.Sprintf("we received your payment for %s (%s).", petName, serviceName)
	case "payment_failed":
		line = fmt.Sprintf("your payment for %s (%s) did not go through. Please try again.", petName, serviceName)
	case "cancelled":
		line = fmt.Sprintf("your booking for %s (%s) was cancelled.", petName, serviceName)
	case "completed":
		line = fmt.Sprintf("the %s for %s is complete. Thank you for trusting us.", serviceName, petName)
	default:
		line = fmt.Sprintf("your booking for %s (%s) is now %s.", petName, serviceName, strings.ReplaceAll(status, "_", " "))
	}

	return Truncate(fmt.Sprintf("Hi %s, %s Booking #%d.", name, line, bookingID))
}
