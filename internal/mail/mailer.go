package mail

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"git.home.luguber.info/inful/rendergate/internal/retry"
)

// Message is one outbound email with the rendered document attached.
type Message struct {
	To             []string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Mailer sends messages. The pipeline treats a nil Mailer as "email
// disabled".
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig carries the transport parameters from the environment.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Unsafe disables TLS entirely, for plaintext relays on trusted
	// networks.
	Unsafe bool
}

// SMTPMailer delivers via an SMTP relay, retrying transient transport
// failures per its backoff policy.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	policy retry.Policy
}

// NewSMTPMailer builds a mailer from config. The From address is the SMTP
// username.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	opts := []gomail.Option{}
	if cfg.Port != 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" || cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.Unsafe {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.Username, policy: retry.DefaultPolicy()}, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := gomail.NewMsg()
	if m.from != "" {
		if err := out.From(m.from); err != nil {
			return fmt.Errorf("set from: %w", err)
		}
	}
	if err := out.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if len(msg.Attachment) > 0 {
		if err := out.AttachReader(msg.AttachmentName, bytes.NewReader(msg.Attachment)); err != nil {
			return fmt.Errorf("attach document: %w", err)
		}
	}

	return retry.Do(ctx, m.policy, func() error {
		return m.client.DialAndSendWithContext(ctx, out)
	})
}
