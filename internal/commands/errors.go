package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes stamped on command failures so hosts can route participatory
// command errors without matching on message strings.
const (
	CodeMessageInvalid   = "PARTICIPATORY_CMD_MESSAGE_INVALID"
	CodeCanceled         = "PARTICIPATORY_CMD_CANCELED"
	CodeDeadlineExceeded = "PARTICIPATORY_CMD_DEADLINE_EXCEEDED"
	CodeContextFailed    = "PARTICIPATORY_CMD_CONTEXT_FAILED"
	CodeExecutionFailed  = "PARTICIPATORY_CMD_EXECUTION_FAILED"
)

// wrapValidationError tags message-level validation failures. Errors already
// carrying a category (a repository NotFound surfacing through a handler, for
// instance) pass through untouched so the original classification survives.
func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message rejected").
		WithTextCode(CodeMessageInvalid)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}

	code, msg := CodeContextFailed, "command context failed"
	switch {
	case errors.Is(err, context.Canceled):
		code, msg = CodeCanceled, "command canceled by caller"
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = CodeDeadlineExceeded, "command deadline exceeded"
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(code)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command handler failed").
		WithTextCode(CodeExecutionFailed)
}
