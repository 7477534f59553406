package apperr

import (
	"errors"
	"fmt"
)

// ErrNoActiveDatabase is returned by query-side operations when no
// connection session is active.
var ErrNoActiveDatabase = errors.New("no active database")

// ProfileNotFoundError means the requested connection profile does not
// exist in the profile store. Nothing was opened, so no rollback is needed.
type ProfileNotFoundError struct {
	Id string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("connection profile not found: %s", e.Id)
}

// ConnectionError means establishing a connection failed for real (a known
// driver version failed, or every candidate was exhausted).
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AbortError means the in-flight call was cancelled by the caller. Callers
// must be able to tell it apart from a generic connection failure.
type AbortError struct {
	Op string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s aborted", e.Op)
}

// QueryParseError means one of the string-encoded query fragments was not
// valid JSON. Fatal to that call only, no session impact.
type QueryParseError struct {
	Err error
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("Invalid JSON in query parameters: %v", e.Err)
}

func (e *QueryParseError) Unwrap() error { return e.Err }

func IsProfileNotFound(err error) bool {
	var target *ProfileNotFoundError
	return errors.As(err, &target)
}

func IsConnection(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

func IsAbort(err error) bool {
	var target *AbortError
	return errors.As(err, &target)
}

func IsQueryParse(err error) bool {
	var target *QueryParseError
	return errors.As(err, &target)
}
