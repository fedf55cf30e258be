package engine

import (
	"errors"
	"strings"
)

// Kind classifies a failed operation. The HTTP layer maps each kind to one
// status code.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindValidation
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

const (
	MsgInvalidID          = "Invalid ID format"
	MsgValidation         = "Validation error"
	MsgIdeaNotFound       = "Idea not found"
	MsgKollabNotFound     = "Kollab not found"
	MsgIdeaNotApproved    = "Cannot create a Kollab for an idea that is not approved"
	MsgActiveKollabExists = "An active Kollab already exists for this idea"
	MsgInvalidPage        = "Page must be greater than 0"
	MsgInvalidLimit       = "Limit must be between 1 and 100"

	MsgCreateIdea       = "Error creating idea"
	MsgFetchIdeas       = "Error fetching ideas"
	MsgFetchIdea        = "Error fetching idea"
	MsgCreateKollab     = "Error creating Kollab"
	MsgFetchKollab      = "Error fetching Kollab"
	MsgCreateDiscussion = "Error creating discussion"
)

// Error is the only error type returned by Engine operations.
type Error struct {
	Kind    Kind
	Message string
	// Errors lists every violated constraint for KindValidation.
	Errors []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Errors) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Errors, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func badRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func validationFailed(errs []string) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidation, Errors: errs}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}
