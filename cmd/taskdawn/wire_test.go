package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/daviddao/taskdawn/internal/config"
	"github.com/daviddao/taskdawn/internal/gmail"
	"github.com/daviddao/taskdawn/internal/mailer"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SyncList: config.DefaultSyncList,
		SMTP:     config.SMTPConfig{Host: "smtp.example.com", Port: 2525},
	}
}

func TestSenders_Transport(t *testing.T) {
	pick := senders(testConfig(), false, nil)

	s, err := pick(types.Account{Mail: types.MailCredentials{Transport: types.TransportSMTP}})
	require.NoError(t, err)
	smtpSender, ok := s.(*mailer.SMTPSender)
	require.True(t, ok, "got %T", s)
	assert.Equal(t, "smtp.example.com", smtpSender.Host)
	assert.Equal(t, 2525, smtpSender.Port)

	s, err = pick(types.Account{Mail: types.MailCredentials{Transport: types.TransportGmail}})
	require.NoError(t, err)
	assert.IsType(t, &gmail.Sender{}, s)

	_, err = pick(types.Account{Mail: types.MailCredentials{Transport: "fax"}})
	assert.Error(t, err)
}

func TestSenders_DryRun(t *testing.T) {
	var buf bytes.Buffer
	pick := senders(testConfig(), true, &buf)

	s, err := pick(types.Account{Email: "a@example.com", Mail: types.MailCredentials{Transport: types.TransportGmail}})
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), types.Account{Email: "a@example.com"}, "subj", "body"))
	assert.Contains(t, buf.String(), "To: a@example.com")
}

func TestNewRunner(t *testing.T) {
	c := testConfig()
	c.WeekdaysOnly = true
	c.Retry = config.RetryConfig{MaxRetries: 2}

	r := newRunner(c)
	assert.Equal(t, config.DefaultSyncList, r.SyncList)
	assert.True(t, r.WeekdaysOnly)
	assert.Equal(t, 2, r.Retry.MaxRetries)
	assert.NotNil(t, r.Retry.Retryable)
	assert.NotNil(t, r.Providers)
}

func TestRunRunner_DryRunIsReadOnly(t *testing.T) {
	var buf bytes.Buffer

	r := runRunner(testConfig(), true, false, &buf)
	assert.True(t, r.ReadOnly)
	assert.False(t, r.Force)
	assert.NotNil(t, r.Senders)

	r = runRunner(testConfig(), false, true, &buf)
	assert.False(t, r.ReadOnly)
	assert.True(t, r.Force)
}

func TestSkipsWithoutConfig(t *testing.T) {
	saturday := time.Date(2024, 1, 13, 7, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)

	assert.True(t, skipsWithoutConfig("run", false, saturday))
	assert.False(t, skipsWithoutConfig("run", true, saturday))
	assert.False(t, skipsWithoutConfig("run", false, monday))
	assert.False(t, skipsWithoutConfig("preview", false, saturday))
}

func TestWeekendRunner_SkipsWithoutAccounts(t *testing.T) {
	r := weekendRunner()
	r.Now = func() time.Time { return time.Date(2024, 1, 14, 7, 0, 0, 0, time.UTC) }

	summary := r.Run(context.Background(), nil)
	assert.True(t, summary.Skipped)
	assert.Equal(t, "Sunday", summary.SkipReason)
	assert.Zero(t, summary.ErrorCount)
}
