// Package batch runs the daily digest across every configured account.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daviddao/taskdawn/internal/digest"
	"github.com/daviddao/taskdawn/internal/display"
	"github.com/daviddao/taskdawn/internal/mailer"
	"github.com/daviddao/taskdawn/internal/rank"
	"github.com/daviddao/taskdawn/internal/retry"
	"github.com/daviddao/taskdawn/internal/tasks"
	"github.com/daviddao/taskdawn/internal/types"
	"github.com/google/uuid"
)

// ProviderFunc connects to an account's task provider.
type ProviderFunc func(ctx context.Context, acct types.Account) (tasks.Provider, error)

// SenderFunc picks the mail sender for an account.
type SenderFunc func(acct types.Account) (mailer.Sender, error)

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(s *types.RunSummary) error
}

// Runner processes accounts one at a time. A failure in one account never
// stops the others.
type Runner struct {
	Providers ProviderFunc
	Senders   SenderFunc
	Retry     retry.Policy
	SyncList  string

	// WeekdaysOnly skips runs on Saturday and Sunday unless Force is set.
	WeekdaysOnly bool
	Force        bool
	// ReadOnly skips creating the sync list. Its items are still excluded.
	ReadOnly bool

	Now      func() time.Time
	Logger   *slog.Logger
	Printer  *display.Printer
	Recorder Recorder
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// IsWeekend reports whether t falls on a Saturday or Sunday in its location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Run executes the pipeline for every account and returns the tallies.
func (r *Runner) Run(ctx context.Context, accounts []types.Account) *types.RunSummary {
	p := r.Printer
	start := r.now()
	summary := &types.RunSummary{RunID: uuid.NewString(), StartedAt: start}

	p.Blank()
	p.Header("  " + digest.BrandName)
	p.SubHeader("  " + digest.BrandTagline)
	p.HeavyRule()

	if r.WeekdaysOnly && !r.Force && IsWeekend(start) {
		summary.Skipped = true
		summary.SkipReason = start.Weekday().String()
		summary.FinishedAt = r.now()
		p.Printf("%s - skipping (weekdays only).", start.Weekday())
		r.log().Info("run skipped", "run_id", summary.RunID, "reason", "weekend", "day", start.Weekday().String())
		r.record(summary)
		return summary
	}

	p.Printf("Loaded %d account(s)", len(accounts))
	r.log().Info("run started", "run_id", summary.RunID, "accounts", len(accounts))

	for _, acct := range accounts {
		res, err := r.processAccount(ctx, acct)
		if err != nil {
			stage, kind, cause := Stage(""), "internal", err
			var ae *AccountError
			if errors.As(err, &ae) {
				stage, kind, cause = ae.Stage, ae.Kind(), ae.Err
			}
			res.Stage = string(stage)
			res.Error = err.Error()
			summary.ErrorCount++

			r.log().Error("account failed",
				"account", acct.Email,
				"stage", stage,
				"kind", kind,
				"error", err)
			p.Blank()
			p.Rule()
			p.ErrorMsg("%s - Error:", acct.Email)
			p.Step("%s: %v", kind, cause)
			p.Rule()
		} else {
			summary.SuccessCount++
			r.log().Info("digest sent", "account", acct.Email, "tasks", res.TaskCount)
			p.Rule()
			p.SuccessMsg("%s - Complete!", acct.Email)
		}
		summary.Results = append(summary.Results, res)
	}

	summary.FinishedAt = r.now()

	p.Blank()
	p.HeavyRule()
	p.Printf("%s complete!", digest.BrandName)
	p.Printf("  %s Success: %d", display.Success.Render("✓"), summary.SuccessCount)
	p.Printf("  %s Errors:  %d", display.ErrStyle.Render("✗"), summary.ErrorCount)
	p.HeavyRule()
	p.Blank()

	r.log().Info("run finished",
		"run_id", summary.RunID,
		"success", summary.SuccessCount,
		"errors", summary.ErrorCount,
		"elapsed", summary.FinishedAt.Sub(start).Round(time.Millisecond))
	r.record(summary)
	return summary
}

func (r *Runner) record(s *types.RunSummary) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.RecordRun(s); err != nil {
		r.log().Warn("could not record run", "run_id", s.RunID, "error", err)
	}
}

// processAccount runs connect, sync-list, fetch, rank and send for one
// account.
func (r *Runner) processAccount(ctx context.Context, acct types.Account) (types.AccountResult, error) {
	p := r.Printer
	res := types.AccountResult{Account: acct.Email}

	p.Blank()
	p.Rule()
	p.Printf("Processing: %s", display.Bold.Render(acct.Label()))
	p.Rule()

	provider, err := r.Providers(ctx, acct)
	if err != nil {
		return res, stageErr(acct.Email, StageConnect, err)
	}

	prep, err := r.Prepare(ctx, acct, provider)
	if prep != nil {
		res.TaskCount = len(prep.Ranked)
		res.SkippedLists = len(prep.Skipped)
	}
	if err != nil {
		return res, err
	}

	p.Blank()
	p.Step("Sending daily digest...")
	sender, err := r.Senders(acct)
	if err != nil {
		return res, stageErr(acct.Email, StageSend, err)
	}
	if err := sender.Send(ctx, acct, prep.Subject, prep.Body); err != nil {
		return res, stageErr(acct.Email, StageSend, err)
	}
	p.Step("Email sent successfully!")
	return res, nil
}

// Prepared is an account's ranked digest, ready to send.
type Prepared struct {
	Account  types.Account
	SyncList types.TaskList
	Lists    []types.TaskList
	Skipped  []*tasks.ListError
	Ranked   []types.RankedTask
	Subject  string
	Body     string
}

// Top returns the tasks shown in the digest.
func (pr *Prepared) Top() []types.RankedTask {
	return rank.Top(pr.Ranked, digest.TopN)
}

// Prepare ensures the sync list, aggregates and ranks the account's tasks,
// and formats the digest. It makes no mail calls.
func (r *Runner) Prepare(ctx context.Context, acct types.Account, provider tasks.Provider) (*Prepared, error) {
	p := r.Printer
	log := r.log().With("account", acct.Email)
	policy := r.policy(log)
	prep := &Prepared{Account: acct}

	if r.SyncList != "" && !r.ReadOnly {
		list, created, err := tasks.EnsureSyncList(ctx, provider, r.SyncList, policy)
		if err != nil {
			return prep, stageErr(acct.Email, StageSyncList, err)
		}
		prep.SyncList = list
		if created {
			p.Step("Sync list %q created successfully.", list.Title)
			log.Info("sync list created", "list", list.Title, "list_id", list.ID)
		} else {
			p.Step("Sync list %q found.", list.Title)
		}
	}

	p.Step("Fetching tasks from Google Tasks...")
	var exclude []string
	if r.SyncList != "" {
		exclude = []string{r.SyncList}
	}
	agg, err := tasks.Aggregate(ctx, provider, tasks.AggregateOptions{
		Retry:   policy,
		Exclude: exclude,
		Logger:  log,
	})
	if err != nil {
		return prep, stageErr(acct.Email, StageFetch, err)
	}
	prep.Lists = agg.Lists
	prep.Skipped = agg.Skipped

	p.Step("Found %d task list(s): %s", len(agg.Lists), listTitles(agg.Lists))
	for _, le := range agg.Skipped {
		p.Step("Warning: Could not fetch tasks from list %q: %v", le.List.Title, le.Err)
	}

	now := r.now()
	prep.Ranked = rank.Rank(agg.Tasks, now)
	p.Step("Found %d uncompleted task(s) across all lists.", len(prep.Ranked))

	top := prep.Top()
	if len(top) > 0 {
		p.Blank()
		p.Step("Top %d ranked tasks:", len(top))
		titles := make([]string, len(top))
		for i, t := range top {
			titles[i] = t.Title
		}
		p.TaskPreview(titles)
	}

	prep.Subject = digest.Subject(now)
	prep.Body = digest.Body(top, len(prep.Ranked))
	return prep, nil
}

func (r *Runner) policy(log *slog.Logger) retry.Policy {
	policy := r.Retry
	if policy.Retryable == nil {
		policy.Retryable = tasks.IsRetryable
	}
	inner := policy.OnRetry
	p := r.Printer
	policy.OnRetry = func(attempt, maxRetries int, delay time.Duration, err error) {
		p.Step("Retrying in %s (attempt %d/%d)...", delay, attempt, maxRetries)
		log.Warn("retrying provider call",
			"attempt", attempt,
			"max_retries", maxRetries,
			"delay", delay,
			"kind", tasks.Kind(err),
			"error", err)
		if inner != nil {
			inner(attempt, maxRetries, delay, err)
		}
	}
	return policy
}

func listTitles(lists []types.TaskList) string {
	titles := make([]string, len(lists))
	for i, l := range lists {
		titles[i] = l.Title
	}
	return strings.Join(titles, ", ")
}

// String renders a one-line summary for logs and the CLI.
func String(s *types.RunSummary) string {
	if s.Skipped {
		return fmt.Sprintf("skipped (%s)", s.SkipReason)
	}
	return fmt.Sprintf("%d succeeded, %d failed", s.SuccessCount, s.ErrorCount)
}
