package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/attachlink/placement-api/pkg/config"
)

// Mailer delivers account lifecycle emails. Content rendering stays minimal;
// templating is a consumer concern.
type Mailer interface {
	SendActivation(to, accountID, token string) error
	SendPasswordReset(to, token string) error
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	baseURL string
}

// NewSMTPMailer constructs an SMTP-backed mailer.
func NewSMTPMailer(cfg config.SMTPConfig, baseURL string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/")}
}

// SendActivation mails the account activation link.
func (m *SMTPMailer) SendActivation(to, accountID, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/activate?account_id=%s&token=%s", m.baseURL, accountID, token)
	body := fmt.Sprintf("Welcome! Activate your account by visiting:\r\n\r\n%s\r\n", link)
	return m.Send(to, "Activate your account", body)
}

// SendPasswordReset mails the password reset token.
func (m *SMTPMailer) SendPasswordReset(to, token string) error {
	body := fmt.Sprintf("A password reset was requested for your account.\r\n\r\nReset token: %s\r\n\r\nIgnore this message if you did not request it.\r\n", token)
	return m.Send(to, "Password reset", body)
}

// Send delivers a generic notification email.
func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs outbound mail instead of delivering it. Used in development
// and tests.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendActivation(to, accountID, token string) error {
	m.logger.Info("activation mail",
		zap.String("to", to),
		zap.String("account_id", accountID),
		zap.String("token", token),
	)
	return nil
}

func (m *LogMailer) SendPasswordReset(to, token string) error {
	m.logger.Info("password reset mail", zap.String("to", to), zap.String("token", token))
	return nil
}

func (m *LogMailer) Send(to, subject, body string) error {
	m.logger.Info("mail", zap.String("to", to), zap.String("subject", subject))
	return nil
}
