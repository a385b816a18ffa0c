package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LicenseMail is the confirmation sent after a licence becomes active.
type LicenseMail struct {
	To            string
	LicenceKey    string
	PlanID        string
	BillingPeriod string
	ExpiresAt     time.Time
}

type Mailer interface {
	SendLicenseActivated(ctx context.Context, m LicenseMail) error
}

// DevConsoleMailer logs mails instead of sending them.
type DevConsoleMailer struct {
	log *zap.Logger
}

func NewDevConsoleMailer(log *zap.Logger) *DevConsoleMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &DevConsoleMailer{log: log}
}

func (m *DevConsoleMailer) SendLicenseActivated(_ context.Context, mail LicenseMail) error {
	m.log.Info("license activation mail",
		zap.String("to", mail.To),
		zap.String("licence_key", mail.LicenceKey),
		zap.Time("expires_at", mail.ExpiresAt),
	)
	return nil
}

const defaultSMTPTimeout = 10 * time.Second

type SMTPMailer struct {
	addr    string
	host    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
}

func NewSMTPMailer(addr, user, password, from string) *SMTPMailer {
	host, _, _ := net.SplitHostPort(addr)
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPMailer{addr: addr, host: host, auth: auth, from: from, timeout: defaultSMTPTimeout}
}

// SendLicenseActivated runs the whole SMTP exchange under one connection
// deadline taken from ctx, or from the mailer timeout when ctx has none.
func (m *SMTPMailer) SendLicenseActivated(ctx context.Context, mail LicenseMail) error {
	if strings.TrimSpace(mail.To) == "" {
		return fmt.Errorf("license mail: empty recipient")
	}

	dialer := net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", m.addr, err)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(m.timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.auth != nil {
		if err := c.Auth(m.auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(mail.To); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(licenseMessage(m.from, mail)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

func licenseMessage(from string, mail LicenseMail) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", mail.To)
	b.WriteString("Subject: Your licence is active\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString("Thank you for your payment. Your licence is now active.\r\n\r\n")
	fmt.Fprintf(&b, "Licence key: %s\r\n", mail.LicenceKey)
	if mail.PlanID != "" {
		fmt.Fprintf(&b, "Plan: %s (%s)\r\n", mail.PlanID, mail.BillingPeriod)
	}
	fmt.Fprintf(&b, "Valid until: %s\r\n", mail.ExpiresAt.Format("January 2, 2006"))
	return []byte(b.String())
}
