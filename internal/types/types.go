// Package types defines core data structures for taskdawn.
package types

import "time"

// GoogleCredentials holds the OAuth2 material for one Google Tasks account.
// Refresh tokens are provisioned out of band.
type GoogleCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"`
	RefreshToken string `json:"-"`
}

// MailCredentials holds what a sender needs to deliver the digest.
type MailCredentials struct {
	Transport   string `json:"transport"`
	AppPassword string `json:"-"`
}

// Mail transports.
const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
)

// Account is one configured digest recipient.
type Account struct {
	Email  string            `json:"email"`
	Name   string            `json:"name,omitempty"`
	Google GoogleCredentials `json:"google"`
	Mail   MailCredentials   `json:"mail"`
}

// Label returns the name used in narration, falling back to the address.
func (a Account) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// TaskList is a Google Tasks list.
type TaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Task status values as published by Google Tasks.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Task is an open item fetched from a task list.
// Created holds the item's last-modified time when the provider does not
// publish a creation time.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ListID    string     `json:"list_id"`
	ListTitle string     `json:"list_title"`
	Status    string     `json:"status"`
	Due       *time.Time `json:"due,omitempty"`
	Created   *time.Time `json:"created,omitempty"`
}

// RankedTask is a task with its 1-based position in the priority order.
type RankedTask struct {
	Task
	Position int `json:"position"`
}

// Digest is the condensed view mailed to an account holder.
type Digest struct {
	Top     *RankedTask  `json:"top,omitempty"`
	Stretch []RankedTask `json:"stretch,omitempty"`
	Total   int          `json:"total"`
}

// AccountResult holds the outcome of processing a single account.
type AccountResult struct {
	Account      string `json:"account"`
	TaskCount    int    `json:"task_count"`
	SkippedLists int    `json:"skipped_lists,omitempty"`
	Stage        string `json:"stage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// OK reports whether the account's pipeline completed.
func (r AccountResult) OK() bool {
	return r.Error == ""
}

// RunSummary holds the result of processing all accounts.
type RunSummary struct {
	RunID        string          `json:"run_id"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
	Skipped      bool            `json:"skipped,omitempty"`
	SkipReason   string          `json:"skip_reason,omitempty"`
	SuccessCount int             `json:"success_count"`
	ErrorCount   int             `json:"error_count"`
	Results      []AccountResult `json:"results,omitempty"`
}
