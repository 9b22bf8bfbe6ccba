package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/dajohi/goemail"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSender struct {
	sent []*goemail.Message
	err  error
}

func (f *fakeSender) Send(msg *goemail.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Log
	logger.Log = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

func TestNew_Disabled(t *testing.T) {
	m, err := New(Config{FrontendURL: "http://localhost:5173/"})
	require.NoError(t, err)
	assert.False(t, m.IsEnabled())
	assert.Equal(t, "http://localhost:5173/reset-password?token=abc", m.resetLink("abc"))
}

func TestNew_BadFromAddress(t *testing.T) {
	_, err := New(Config{Host: "smtp.example.com", Port: 587, From: "not an address"})
	assert.Error(t, err)
}

func TestSendResetPassword_Disabled(t *testing.T) {
	logs := observeLogs(t)

	m, err := New(Config{FrontendURL: "http://localhost:5173"})
	require.NoError(t, err)

	err = m.SendResetPassword(context.Background(), "john@example.com", "tok123")
	require.NoError(t, err)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "http://localhost:5173/reset-password?token=tok123", warns[0].ContextMap()["link"])
	assert.Equal(t, "john@example.com", warns[0].ContextMap()["email"])
}

func TestSendResetPassword_Enabled(t *testing.T) {
	observeLogs(t)

	fake := &fakeSender{}
	m := &Mailer{smtp: fake, mailAddress: "noreply@example.com", frontendURL: "https://app.example.com"}

	err := m.SendResetPassword(context.Background(), "john@example.com", "tok123")
	require.NoError(t, err)
	assert.Len(t, fake.sent, 1)
}

func TestSendResetPassword_SendError(t *testing.T) {
	observeLogs(t)

	fake := &fakeSender{err: errors.New("connection refused")}
	m := &Mailer{smtp: fake, mailAddress: "noreply@example.com", frontendURL: "https://app.example.com"}

	err := m.SendResetPassword(context.Background(), "john@example.com", "tok123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestResetPasswordBody(t *testing.T) {
	body := resetPasswordBody("https://app.example.com/reset-password?token=t")
	assert.Contains(t, body, "https://app.example.com/reset-password?token=t")
}

func TestResetLink_EscapesToken(t *testing.T) {
	m := &Mailer{frontendURL: "https://app.example.com"}
	assert.Equal(t, "https://app.example.com/reset-password?token=a%2Bb", m.resetLink("a+b"))
}
