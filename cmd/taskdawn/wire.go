package main

import (
	"context"
	"fmt"
	"io"

	"github.com/daviddao/taskdawn/internal/auth"
	"github.com/daviddao/taskdawn/internal/batch"
	"github.com/daviddao/taskdawn/internal/config"
	"github.com/daviddao/taskdawn/internal/gmail"
	"github.com/daviddao/taskdawn/internal/mailer"
	"github.com/daviddao/taskdawn/internal/tasks"
	"github.com/daviddao/taskdawn/internal/types"
	gm "google.golang.org/api/gmail/v1"
)

// connectTasks authenticates an account against Google Tasks.
func connectTasks(ctx context.Context, acct types.Account) (tasks.Provider, error) {
	svc, err := auth.LoadTasksService(ctx, acct.Google)
	if err != nil {
		return nil, err
	}
	return tasks.NewGoogleProvider(svc), nil
}

func gmailService(ctx context.Context, acct types.Account) (*gm.Service, error) {
	return auth.LoadGmailService(ctx, acct.Google)
}

// senders picks each account's transport. In dry-run mode every digest is
// printed to w instead.
func senders(c *config.Config, dryRun bool, w io.Writer) batch.SenderFunc {
	smtpSender := mailer.NewSMTPSender(c.SMTP.Host, c.SMTP.Port)
	gmailSender := gmail.NewSender(gmailService)

	return func(acct types.Account) (mailer.Sender, error) {
		if dryRun {
			return mailer.WriterSender{W: w}, nil
		}
		switch acct.Mail.Transport {
		case types.TransportSMTP, "":
			return smtpSender, nil
		case types.TransportGmail:
			return gmailSender, nil
		default:
			return nil, fmt.Errorf("unknown mail transport %q", acct.Mail.Transport)
		}
	}
}

// newRunner builds a runner from the loaded config.
func newRunner(c *config.Config) *batch.Runner {
	return &batch.Runner{
		Providers:    connectTasks,
		Retry:        c.RetryPolicy(tasks.IsRetryable),
		SyncList:     c.SyncList,
		WeekdaysOnly: c.WeekdaysOnly,
		Logger:       log,
		Printer:      printer,
	}
}
