package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	mail "github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/config"
	"petmemorial/internal/email"
)

type fakeDialer struct {
	sent []*mail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*mail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPSender_Send(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{from: "Rainbow Paws <no-reply@paws.example.com>", dialer: d}

	err := s.Send(context.Background(), email.Message{
		To:      "owner@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"owner@example.com"}, d.sent[0].GetHeader("To"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/plain")
	assert.Contains(t, buf.String(), "text/html")
}

func TestSMTPSender_WrapsDialError(t *testing.T) {
	boom := errors.New("connection refused")
	s := &SMTPSender{from: "x@example.com", dialer: &fakeDialer{err: boom}}

	err := s.Send(context.Background(), email.Message{To: "a@example.com", HTML: "<p/>"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSMTPSender_RejectsEmptyRecipient(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{from: "x@example.com", dialer: d}

	require.Error(t, s.Send(context.Background(), email.Message{}))
	assert.Empty(t, d.sent)
}

func TestNew_FallsBackToLogSender(t *testing.T) {
	_, ok := New(config.SMTPConfig{}, nil).(*LogSender)
	assert.True(t, ok)

	_, ok = New(config.SMTPConfig{Host: "smtp.example.com", From: "x@example.com", Port: 587}, nil).(*SMTPSender)
	assert.True(t, ok)
}
