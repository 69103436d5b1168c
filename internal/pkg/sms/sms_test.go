package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/config"
)

func TestNormalizePHNumber(t *testing.T) {
	cases := map[string]string{
		"09171234567":      "639171234567",
		"+63 917 123 4567": "639171234567",
		"9171234567":       "639171234567",
		"12345":            "",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePHNumber(in), in)
	}
}

func TestBookingMessage(t *testing.T) {
	msg := BookingMessage("Ana", "Bella", "Standard Cremation", "payment_confirmed", 5)
	assert.Equal(t, "Hi Ana, we received your payment for Bella (Standard Cremation). Booking #5.", msg)

	msg = BookingMessage("", "Bella", "Standard Cremation", "in_progress", 5)
	assert.Contains(t, msg, "Hi there,")
	assert.Contains(t, msg, "now in progress")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 400)
	out := Truncate(long)
	assert.Len(t, []rune(out), maxLength)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, "short", Truncate("short"))
}

func TestGatewaySender_Send(t *testing.T) {
	var got gatewayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewGatewaySender(config.SMSConfig{GatewayURL: srv.URL, APIKey: "k", SenderName: "Paws", Timeout: time.Second})
	require.NoError(t, s.Send(context.Background(), "09171234567", "hello"))

	assert.Equal(t, "639171234567", got.Number)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, "k", got.APIKey)
}

func TestGatewaySender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := NewGatewaySender(config.SMSConfig{GatewayURL: srv.URL, APIKey: "k", Timeout: time.Second})
	err := s.Send(context.Background(), "09171234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
}

func TestGatewaySender_InvalidNumber(t *testing.T) {
	s := NewGatewaySender(config.SMSConfig{GatewayURL: "http://unused", APIKey: "k", Timeout: time.Second})
	require.Error(t, s.Send(context.Background(), "123", "hello"))
}
