package mail

import (
	"context"
	"testing"
	"time"

	"github.com/playerfinder/playerfinder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPasswordReset(t *testing.T) {
	body, err := RenderPasswordReset(PasswordReset{
		To:       "player@example.com",
		Username: "player<1>",
		ResetURL: "https://app.example.com/reset?token=abc",
		ValidFor: 2 * time.Hour,
	})
	require.NoError(t, err)

	assert.Contains(t, body, "https://app.example.com/reset?token=abc")
	assert.Contains(t, body, "2 hours")
	assert.Contains(t, body, "player&lt;1&gt;")
	assert.NotContains(t, body, "player<1>")
}

func TestSendPasswordReset_DisabledSkipsDelivery(t *testing.T) {
	m := New(config.MailConfig{Enabled: false, SMTPHost: "127.0.0.1", SMTPPort: 1})

	err := m.SendPasswordReset(context.Background(), PasswordReset{
		To:       "player@example.com",
		Username: "player",
		ResetURL: "https://app.example.com/reset?token=abc",
		ValidFor: time.Hour,
	})
	assert.NoError(t, err)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
	assert.Equal(t, "1m30s", humanDuration(90*time.Second))
	assert.Equal(t, "a limited time", humanDuration(0))
}

func TestSMTPTimeout_FollowsContextDeadline(t *testing.T) {
	now := time.Now()
	assert.Equal(t, defaultSMTPTimeout, smtpTimeout(context.Background(), now))

	long, cancelLong := context.WithDeadline(context.Background(), now.Add(time.Minute))
	defer cancelLong()
	assert.Equal(t, defaultSMTPTimeout, smtpTimeout(long, now))

	short, cancelShort := context.WithDeadline(context.Background(), now.Add(3*time.Second))
	defer cancelShort()
	assert.Equal(t, 3*time.Second, smtpTimeout(short, now))

	assert.Zero(t, smtpTimeout(short, now.Add(time.Minute)))
}

func TestSendPasswordReset_ExpiredContext(t *testing.T) {
	m := New(config.MailConfig{Enabled: true, SMTPHost: "127.0.0.1", SMTPPort: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := m.SendPasswordReset(ctx, PasswordReset{
		To:       "player@example.com",
		Username: "player",
		ResetURL: "https://app.example.com/reset?token=abc",
		ValidFor: time.Hour,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
