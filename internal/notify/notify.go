// Package notify reports terminal acquisition outcomes over email. With
// no SMTP server configured every notification is a no-op, so the rest
// of the pipeline never branches on whether notifications are enabled.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("timesniper.notify")

// PasswordEnv overrides Config.Password when set.
const PasswordEnv = "SMTP_PASSWORD"

type Config struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	// recipients of outcome notifications; empty falls back to the
	// sending address
	To []string `json:"to"`
}

// Outcome is the terminal result of one acquisition.
type Outcome struct {
	Candidate string
	Succeeded bool
	Attempts  int
	Err       error
	At        time.Time
}

type Mailer struct {
	config  Config
	enabled bool
}

func NewMailer(config Config) *Mailer {
	if password := os.Getenv(PasswordEnv); password != "" {
		config.Password = password
	}
	if len(config.To) == 0 {
		config.To = []string{config.EmailAddress}
	}
	return &Mailer{
		config:  config,
		enabled: config.Server != "" && config.EmailAddress != "",
	}
}

func (m *Mailer) Enabled() bool {
	return m.enabled
}

// Notify sends one outcome email. Disabled mailers return nil
// immediately.
func (m *Mailer) Notify(ctx context.Context, outcome Outcome) error {
	if !m.enabled {
		return nil
	}

	ctx, span := tracer.Start(ctx, "notify:Notify")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("timesniper <%s>", m.config.EmailAddress)
	mail.To = m.config.To
	mail.Subject = subject(outcome)
	mail.Text = []byte(body(outcome))

	err := mail.Send(
		fmt.Sprintf("%s:%d", m.config.Server, m.config.Port),
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", m.config.Server, m.config.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}

func subject(outcome Outcome) string {
	if outcome.Succeeded {
		return fmt.Sprintf("time.fun purchase succeeded: %s", outcome.Candidate)
	}
	return fmt.Sprintf("time.fun purchase failed: %s", outcome.Candidate)
}

func body(outcome Outcome) string {
	at := outcome.At
	if at.IsZero() {
		at = time.Now()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\n", outcome.Candidate)
	if outcome.Attempts > 0 {
		fmt.Fprintf(&b, "Attempts: %d\n", outcome.Attempts)
	}
	fmt.Fprintf(&b, "Time: %s\n", at.UTC().Format(time.RFC3339))
	if outcome.Succeeded {
		b.WriteString("\nThe purchase flow reached confirmation.\n")
	} else {
		fmt.Fprintf(&b, "\nThe purchase flow did not complete: %v\n", outcome.Err)
	}
	return b.String()
}
