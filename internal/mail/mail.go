package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/dajohi/goemail"
	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
)

const resetPasswordSubject = "Reset your password"

// sender delivers a composed message. *goemail.SMTP satisfies it.
type sender interface {
	Send(msg *goemail.Message) error
}

// Mailer sends account emails over SMTP. When SMTP is not configured it is
// disabled and only logs what it would have sent.
type Mailer struct {
	smtp        sender
	mailName    string
	mailAddress string
	frontendURL string
}

// Config holds SMTP connection settings.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	FrontendURL string
}

// New returns a Mailer for cfg. Port 465 uses implicit TLS (smtps), any
// other port uses smtp with STARTTLS.
func New(cfg Config) (*Mailer, error) {
	m := &Mailer{frontendURL: strings.TrimRight(cfg.FrontendURL, "/")}

	if cfg.Host == "" {
		return m, nil
	}

	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}
	m.mailName = from.Name
	m.mailAddress = from.Address

	scheme := "smtp"
	if cfg.Port == 465 {
		scheme = "smtps"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	client, err := goemail.NewSMTP(u.String(), &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	m.smtp = client

	return m, nil
}

// IsEnabled reports whether emails are actually delivered.
func (m *Mailer) IsEnabled() bool {
	return m.smtp != nil
}

// SendResetPassword mails the password reset link for token to email.
func (m *Mailer) SendResetPassword(ctx context.Context, email, token string) error {
	link := m.resetLink(token)

	if !m.IsEnabled() {
		// Development fallback: the link is only visible in the server log.
		logger.Log.Warnw("smtp disabled, reset password link not sent", "email", email, "link", link)
		return nil
	}

	msg := goemail.NewMessage(m.mailAddress, resetPasswordSubject, resetPasswordBody(link))
	msg.SetName(m.mailName)
	msg.AddBCC(email)

	if err := m.smtp.Send(msg); err != nil {
		return fmt.Errorf("send reset password email: %w", err)
	}
	logger.Log.Infow("reset password email sent", "email", email)
	return nil
}

func (m *Mailer) resetLink(token string) string {
	return m.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

func resetPasswordBody(link string) string {
	return "A password reset was requested for your account.\n\n" +
		"Open the link below to choose a new password:\n\n" +
		link + "\n\n" +
		"If you did not request this, you can ignore this email.\n"
}
