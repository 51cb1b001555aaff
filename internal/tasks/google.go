package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/daviddao/taskdawn/internal/types"
	"google.golang.org/api/googleapi"
	gt "google.golang.org/api/tasks/v1"
)

// maxResults matches the page size the digest has always used.
const maxResults = 100

// GoogleProvider implements Provider on the Google Tasks v1 API.
type GoogleProvider struct {
	svc *gt.Service
}

// NewGoogleProvider wraps an authenticated Tasks service.
func NewGoogleProvider(svc *gt.Service) *GoogleProvider {
	return &GoogleProvider{svc: svc}
}

// ListTaskLists returns the account's task lists, dropping entries without
// an id or title.
func (g *GoogleProvider) ListTaskLists(ctx context.Context) ([]types.TaskList, error) {
	resp, err := g.svc.Tasklists.List().MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, wrap("list task lists", err)
	}

	lists := make([]types.TaskList, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == "" || item.Title == "" {
			continue
		}
		lists = append(lists, types.TaskList{ID: item.Id, Title: item.Title})
	}
	return lists, nil
}

// CreateTaskList inserts a new task list.
func (g *GoogleProvider) CreateTaskList(ctx context.Context, title string) (types.TaskList, error) {
	created, err := g.svc.Tasklists.Insert(&gt.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return types.TaskList{}, wrap("create task list", err)
	}
	return types.TaskList{ID: created.Id, Title: created.Title}, nil
}

// ListOpenTasks returns the items of a list that still need action.
func (g *GoogleProvider) ListOpenTasks(ctx context.Context, listID string) ([]types.Task, error) {
	resp, err := g.svc.Tasks.List(listID).
		ShowCompleted(false).
		ShowHidden(false).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("list tasks", err)
	}

	out := make([]types.Task, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Status != types.StatusNeedsAction || item.Id == "" || item.Title == "" {
			continue
		}
		out = append(out, types.Task{
			ID:      item.Id,
			Title:   item.Title,
			ListID:  listID,
			Status:  item.Status,
			Due:     ParseTimestamp(item.Due),
			Created: ParseTimestamp(item.Updated),
		})
	}
	return out, nil
}

// ParseTimestamp parses an RFC 3339 timestamp as published by Google Tasks.
// Empty or unparseable input yields nil.
func ParseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func wrap(op string, err error) error {
	pe := &ProviderError{Op: op, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		pe.StatusCode = gerr.Code
	}
	return pe
}
