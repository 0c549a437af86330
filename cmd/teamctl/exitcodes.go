package main

import (
	"errors"
	"fmt"

	"teamhub/internal/client"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitRejected  = 3 // the server refused the request
	exitTransport = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// apiFailure tags a client error with its exit code and user-facing message.
func apiFailure(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return withCode(exitRejected, errors.New(client.Message(err)))
	}
	return withCode(exitTransport, fmt.Errorf("%s (%w)", client.GenericMessage, err))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}
