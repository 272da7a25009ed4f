package main

import "fmt"

const (
	exitAborted = 1
	exitConfig  = 2
)

// exitError carries the process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func configFailure(err error) error {
	return &exitError{code: exitConfig, err: err}
}
