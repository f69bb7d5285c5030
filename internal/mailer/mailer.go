// Package mailer sends e-mail through the SMTP transport stored in the
// email_configuration row.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"TRIPPLANNER_BACK-END/internal/models"
	"TRIPPLANNER_BACK-END/internal/repository"
)

// ErrNotConfigured is returned when no e-mail configuration has been saved.
var ErrNotConfigured = errors.New("email transport not configured")

// Message is one outgoing e-mail. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConfigSource loads the stored SMTP configuration.
type ConfigSource interface {
	GetEmailConfig(ctx context.Context) (*models.EmailConfiguration, error)
}

type transport func(ctx context.Context, cfg *models.EmailConfiguration, from string, to []string, body []byte) error

// SMTPMailer implements Sender on top of net/smtp.
type SMTPMailer struct {
	settings    ConfigSource
	defaultFrom string
	send        transport
}

func New(settings ConfigSource, defaultFrom string) *SMTPMailer {
	return &SMTPMailer{settings: settings, defaultFrom: defaultFrom, send: sendSMTP}
}

// Send loads the configuration on every call so admin edits apply immediately.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	cfg, err := m.settings.GetEmailConfig(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotConfigured
	}
	if err != nil {
		return fmt.Errorf("load email configuration: %w", err)
	}
	if cfg.Host == "" {
		return ErrNotConfigured
	}

	from := cfg.DefaultFromEmail
	if from == "" {
		from = m.defaultFrom
	}
	if msg.Text == "" && msg.HTML != "" {
		msg.Text = StripTags(msg.HTML)
	}

	body := BuildMessage(from, msg, "b-"+uuid.NewString())
	if err := m.send(ctx, cfg, from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationCode mails a password-reset code.
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	text := fmt.Sprintf(`Olá,

Recebemos um pedido para redefinir sua senha.

Seu código de verificação é: %s

O código expira em 3 minutos.

Se você não fez esse pedido, ignore este e-mail.
`, code)
	return m.Send(ctx, Message{To: to, Subject: "Código de redefinição de senha", Text: text})
}

// BuildMessage renders msg as RFC 5322 bytes. With an HTML part the body is
// multipart/alternative, otherwise plain text.
func BuildMessage(from string, msg Message, boundary string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		writeQP(&b, msg.Text)
		return b.Bytes()
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	for _, part := range []struct{ kind, body string }{{"text/plain", msg.Text}, {"text/html", msg.HTML}} {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", part.kind)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		writeQP(&b, part.body)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}

func writeQP(b *bytes.Buffer, s string) {
	w := quotedprintable.NewWriter(b)
	_, _ = w.Write([]byte(s))
	_ = w.Close()
}

var (
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	blankPattern = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</h[1-6]>|</li>|</div>`)
)

// StripTags derives a plain-text body from an HTML one.
func StripTags(s string) string {
	s = breakPattern.ReplaceAllString(s, "$0\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func sendSMTP(ctx context.Context, cfg *models.EmailConfiguration, from string, to []string, body []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var conn net.Conn
	var err error
	if cfg.UseSSL {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if cfg.UseTLS && !cfg.UseSSL {
		if err := c.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
