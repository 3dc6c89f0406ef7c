package service

import (
	"context"
	"fmt"
	"mini_lms_backend/internal/config"
	"mini_lms_backend/pkg/logger"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer 发送一封纯文本邮件
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

func NewMailer(cfg config.NotifierConfig) Mailer {
	switch cfg.Provider {
	case "smtp":
		return &SMTPMailer{Config: cfg}
	case "sendgrid":
		return NewSendGridMailer(cfg)
	default:
		return LogMailer{}
	}
}

// LogMailer 只写日志，用于开发环境
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.Log.Info("Email (log provider)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

type SMTPMailer struct {
	Config config.NotifierConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.Config.FromEmail
	msg := "MIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", m.Config.FromName, from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += body

	var auth smtp.Auth
	if m.Config.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.Config.SMTPUser, m.Config.SMTPPassword, m.Config.SMTPHost)
	}

	addr := m.Config.SMTPHost + ":" + strconv.Itoa(m.Config.SMTPPort)
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}

type SendGridMailer struct {
	Client   *sendgrid.Client
	FromName string
	From     string
}

func NewSendGridMailer(cfg config.NotifierConfig) *SendGridMailer {
	return &SendGridMailer{
		Client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		FromName: cfg.FromName,
		From:     cfg.FromEmail,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail(m.FromName, m.From),
		subject,
		mail.NewEmail("", to),
		body,
		"",
	)
	resp, err := m.Client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}
