package batch

import (
	"errors"
	"fmt"

	"github.com/daviddao/taskdawn/internal/tasks"
)

// Stage names the pipeline step an account failed in.
type Stage string

const (
	StageConnect  Stage = "connect"
	StageSyncList Stage = "sync-list"
	StageFetch    Stage = "fetch"
	StageSend     Stage = "send"
)

// AccountError is a failure that ended one account's pipeline. The runner
// records it and moves on to the next account.
type AccountError struct {
	Account string
	Stage   Stage
	Err     error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Account, e.Stage, e.Err)
}

func (e *AccountError) Unwrap() error { return e.Err }

// Kind classifies the failure for logging.
func (e *AccountError) Kind() string {
	var pe *tasks.ProviderError
	if errors.As(e.Err, &pe) {
		return tasks.Kind(e.Err)
	}
	switch e.Stage {
	case StageConnect:
		return "auth"
	case StageSend:
		return "mail"
	default:
		return "internal"
	}
}

func stageErr(acct string, stage Stage, err error) error {
	return &AccountError{Account: acct, Stage: stage, Err: err}
}
