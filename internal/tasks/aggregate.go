package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daviddao/taskdawn/internal/retry"
	"github.com/daviddao/taskdawn/internal/types"
)

// DefaultList stands in for an account that has no usable lists.
var DefaultList = types.TaskList{ID: "@default", Title: "Default"}

// ListError records a list whose items could not be fetched.
type ListError struct {
	List types.TaskList
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("fetch list %q: %v", e.List.Title, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	Retry retry.Policy
	// Exclude holds list titles whose items are never aggregated.
	Exclude []string
	Logger  *slog.Logger
}

// AggregateResult is the union of every list fetched successfully.
type AggregateResult struct {
	Lists   []types.TaskList
	Tasks   []types.Task
	Skipped []*ListError
}

// Aggregate collects the open tasks of every list the account owns, in
// fetch order. A list that fails to load is recorded in Skipped and does
// not fail the aggregation; failing to enumerate lists does.
func Aggregate(ctx context.Context, p Provider, opts AggregateOptions) (*AggregateResult, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	all, err := retry.Do(ctx, opts.Retry, p.ListTaskLists)
	if err != nil {
		return nil, err
	}

	lists := make([]types.TaskList, 0, len(all))
	for _, l := range all {
		if excluded(l.Title, opts.Exclude) {
			continue
		}
		lists = append(lists, l)
	}
	if len(lists) == 0 {
		log.Info("no task lists found, using default list", "list_id", DefaultList.ID)
		lists = []types.TaskList{DefaultList}
	}

	res := &AggregateResult{Lists: lists}
	for _, list := range lists {
		items, err := retry.Do(ctx, opts.Retry, func(ctx context.Context) ([]types.Task, error) {
			return p.ListOpenTasks(ctx, list.ID)
		})
		if err != nil {
			le := &ListError{List: list, Err: err}
			log.Warn("could not fetch tasks from list", "list", list.Title, "kind", Kind(err), "error", err)
			res.Skipped = append(res.Skipped, le)
			continue
		}
		for _, t := range items {
			if t.ID == "" || t.Title == "" {
				continue
			}
			t.ListTitle = list.Title
			if t.ListID == "" {
				t.ListID = list.ID
			}
			res.Tasks = append(res.Tasks, t)
		}
	}
	return res, nil
}

// EnsureSyncList returns the list titled name, creating it when missing.
// created reports whether a list was inserted.
func EnsureSyncList(ctx context.Context, p Provider, name string, policy retry.Policy) (list types.TaskList, created bool, err error) {
	lists, err := retry.Do(ctx, policy, p.ListTaskLists)
	if err != nil {
		return types.TaskList{}, false, err
	}
	for _, l := range lists {
		if l.Title == name {
			return l, false, nil
		}
	}

	list, err = retry.Do(ctx, policy, func(ctx context.Context) (types.TaskList, error) {
		return p.CreateTaskList(ctx, name)
	})
	if err != nil {
		return types.TaskList{}, false, err
	}
	if list.ID == "" || list.Title == "" {
		return types.TaskList{}, false, fmt.Errorf("create sync list %q: provider returned an incomplete list", name)
	}
	return list, true, nil
}

func excluded(title string, names []string) bool {
	for _, n := range names {
		if n == title {
			return true
		}
	}
	return false
}
