// Package mail sends the account emails (address confirmation and password
// reset). Delivery is best effort: a message is attempted once and failures
// are only logged.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/config"
)

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay using PLAIN auth when a username
// is configured.
type SMTPMailer struct {
	addr string
	host string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for cfg.Host:cfg.Port.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	m := &SMTPMailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host: cfg.Host,
		from: cfg.From,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m
}

// Send implements Mailer. net/smtp has no context support; ctx is only checked
// before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, m.format(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) format(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them. Used when no
// SMTP host is configured, e.g. in development.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail not sent, no SMTP host configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// New returns an SMTPMailer, or a LogMailer when cfg.Host is empty.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(logger.Named("mail"))
	}
	return NewSMTPMailer(cfg)
}

// Dispatcher sends mail in the background so request handlers do not wait on
// the relay. Each message is attempted exactly once.
type Dispatcher struct {
	mailer Mailer
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewDispatcher wraps mailer. A nil logger discards failures.
func NewDispatcher(mailer Mailer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{mailer: mailer, logger: logger.Named("mail")}
}

// Dispatch starts delivery of msg and returns immediately. The send is not
// tied to the caller's context, which usually ends with the HTTP request.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.mailer.Send(context.Background(), msg); err != nil {
			d.logger.Error("mail delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			return
		}
		d.logger.Debug("mail delivered", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}()
}

// Wait blocks until all dispatched messages have been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
