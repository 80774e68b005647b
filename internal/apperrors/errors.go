// Package apperrors carries the engine's error taxonomy so callers can tell
// "nothing changed" apart from "changed with a warning" without string
// matching.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInput Kind = iota + 1
	KindGateway
	KindPersistence
	KindNotification
	KindPrecondition
	KindNotFound
)

type Code string

const (
	CodeNoInput             Code = "no_input"
	CodeUnsupportedSource   Code = "unsupported_source"
	CodeGatewayUnavailable  Code = "gateway_unavailable"
	CodeMalformedResponse   Code = "malformed_response"
	CodeEmptyExtraction     Code = "empty_extraction"
	CodeCommitFailed        Code = "commit_failed"
	CodeDeleteFailed        Code = "delete_failed"
	CodeBatchNotFound       Code = "batch_not_found"
	CodeBatchNotLatest      Code = "batch_not_latest"
	CodeRecordNotFound      Code = "record_not_found"
	CodeEntryNotFound       Code = "entry_not_found"
	CodeSessionNotFound     Code = "session_not_found"
	CodeCandidateNotFound   Code = "candidate_not_found"
	CodeDirectoryNotFound   Code = "directory_not_found"
	CodeAmbiguousAssignment Code = "ambiguous_assignment"
	CodeInvalidTransition   Code = "invalid_transition"
	CodeDispatchFailed      Code = "dispatch_failed"
)

type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code Code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code Code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf reports the kind of err, or 0 if err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeOf reports the code of err, or "" if err is not an engine error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code Code) bool { return CodeOf(err) == code }
