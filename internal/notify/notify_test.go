package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledMailerIsNoop(t *testing.T) {
	mailer := NewMailer(Config{})
	require.False(t, mailer.Enabled())
	require.NoError(t, mailer.Notify(context.Background(), Outcome{
		Candidate: "alice",
		Succeeded: true,
	}))
}

func TestRecipientsFallBackToSender(t *testing.T) {
	mailer := NewMailer(Config{
		Server:       "smtp.example.com",
		Port:         587,
		EmailAddress: "bot@example.com",
	})
	require.True(t, mailer.Enabled())
	require.Equal(t, []string{"bot@example.com"}, mailer.config.To)
}

func TestSubjectAndBody(t *testing.T) {
	success := Outcome{Candidate: "alice", Succeeded: true, Attempts: 1}
	require.Equal(t, "time.fun purchase succeeded: alice", subject(success))
	require.Contains(t, body(success), "Attempts: 1")
	require.Contains(t, body(success), "reached confirmation")

	failure := Outcome{
		Candidate: "bob",
		Attempts:  3,
		Err:       errors.New("buy control not found"),
	}
	require.Equal(t, "time.fun purchase failed: bob", subject(failure))
	require.Contains(t, body(failure), "buy control not found")
}
