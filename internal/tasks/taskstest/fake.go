// Package taskstest provides an in-memory tasks.Provider for tests.
package taskstest

import (
	"context"
	"fmt"

	"github.com/daviddao/taskdawn/internal/types"
)

// Provider is a scripted tasks.Provider. Errors queued in ListErrs,
// CreateErrs, and TaskErrs are returned (and consumed) before any data.
type Provider struct {
	Lists      []types.TaskList
	Tasks      map[string][]types.Task
	ListErrs   []error
	CreateErrs []error
	TaskErrs   map[string][]error

	ListCalls   int
	CreateCalls []string
	TaskCalls   []string
}

// New returns an empty fake.
func New() *Provider {
	return &Provider{
		Tasks:    make(map[string][]types.Task),
		TaskErrs: make(map[string][]error),
	}
}

// Calls returns the total number of provider calls made.
func (p *Provider) Calls() int {
	return p.ListCalls + len(p.CreateCalls) + len(p.TaskCalls)
}

func (p *Provider) ListTaskLists(context.Context) ([]types.TaskList, error) {
	p.ListCalls++
	if len(p.ListErrs) > 0 {
		err := p.ListErrs[0]
		p.ListErrs = p.ListErrs[1:]
		return nil, err
	}
	out := make([]types.TaskList, len(p.Lists))
	copy(out, p.Lists)
	return out, nil
}

func (p *Provider) CreateTaskList(_ context.Context, title string) (types.TaskList, error) {
	p.CreateCalls = append(p.CreateCalls, title)
	if len(p.CreateErrs) > 0 {
		err := p.CreateErrs[0]
		p.CreateErrs = p.CreateErrs[1:]
		return types.TaskList{}, err
	}
	l := types.TaskList{ID: fmt.Sprintf("list-%d", len(p.Lists)+1), Title: title}
	p.Lists = append(p.Lists, l)
	return l, nil
}

func (p *Provider) ListOpenTasks(_ context.Context, listID string) ([]types.Task, error) {
	p.TaskCalls = append(p.TaskCalls, listID)
	if errs := p.TaskErrs[listID]; len(errs) > 0 {
		p.TaskErrs[listID] = errs[1:]
		return nil, errs[0]
	}
	return p.Tasks[listID], nil
}
