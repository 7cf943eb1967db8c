// Package notify delivers check results to the team. The console line on
// stdout is the guaranteed channel; email delivery is best-effort on top.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/wneessen/go-mail"
)

// Config holds the notification transport settings, constructed once at
// startup and passed by value. An empty Server disables email delivery.
type Config struct {
	Server    string
	Port      int
	Username  string
	Password  string
	From      string
	Receivers []string
}

func (c Config) mailEnabled() bool {
	return c.Server != ""
}

// Notifier writes subject/body notifications to stdout and, when configured,
// submits them over SMTP. Transport failures never escalate past this type.
type Notifier struct {
	cfg  Config
	out  io.Writer
	logw io.Writer
	send func(subject, body string) error
}

type Option func(*Notifier)

// WithOutput redirects the console notification stream, mainly for tests.
func WithOutput(w io.Writer) Option {
	return func(n *Notifier) { n.out = w }
}

// WithErrorOutput redirects where delivery failures are reported.
func WithErrorOutput(w io.Writer) Option {
	return func(n *Notifier) { n.logw = w }
}

func New(cfg Config, opts ...Option) *Notifier {
	n := &Notifier{
		cfg:  cfg,
		out:  os.Stdout,
		logw: os.Stderr,
	}
	n.send = n.sendMail
	for _, apply := range opts {
		apply(n)
	}
	return n
}

// Notify emits the notification. The console write happens first so it is on
// record before any email attempt; an email failure is reported locally and
// swallowed.
func (n *Notifier) Notify(subject, body string) {
	bold := color.New(color.Bold)
	bold.Fprintln(n.out, subject)
	fmt.Fprintln(n.out, strings.Repeat("-", len(subject)))
	fmt.Fprintln(n.out, body)

	if !n.cfg.mailEnabled() {
		return
	}
	if err := n.send(subject, body); err != nil {
		fmt.Fprintf(n.logw, "email delivery failed: %v\n", err)
	}
}

// sendMail submits the notification over SMTP. Port 465 selects implicit
// TLS; any other port starts plaintext and upgrades via STARTTLS when the
// server offers it. Authentication is attempted only when both username and
// password are present.
func (n *Notifier) sendMail(subject, body string) error {
	opts := []mail.Option{mail.WithPort(n.cfg.Port)}
	if n.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if n.cfg.Username != "" && n.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password))
	}

	client, err := mail.NewClient(n.cfg.Server, opts...)
	if err != nil {
		return fmt.Errorf("failed to build smtp client: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", n.cfg.From, err)
	}
	if err := msg.To(n.cfg.Receivers...); err != nil {
		return fmt.Errorf("invalid receiver list: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return client.DialAndSend(msg)
}
