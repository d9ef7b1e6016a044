package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"cargodesk/internal/config"
	"cargodesk/internal/utils/logger"
)

// Mailer sends plain text mail through an SMTP relay. With no host configured
// it only logs, which is what development and tests use.
type Mailer struct {
	cfg  config.SMTPConfig
	log  *logger.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, log: logger.New("mailer"), send: smtp.SendMail}
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.cfg.Host == "" {
		m.log.Info("SMTP disabled, mail to %s: %s", to, subject)
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{to}, buildMessage(m.cfg.From, to, subject, body)); err != nil {
		return m.log.Error("Failed to send mail to %s", err, to)
	}
	m.log.Success("Mail sent to %s", to)
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func VerificationMail(code string) (subject, body string) {
	return "Your verification code",
		fmt.Sprintf("Your cargodesk verification code is %s.\r\nIt expires soon, do not share it.", code)
}

func OrderStatusMail(orderNumber, status string) (subject, body string) {
	return fmt.Sprintf("Order %s: %s", orderNumber, status),
		fmt.Sprintf("Your order %s is now %s.", orderNumber, status)
}
