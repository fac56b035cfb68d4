package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind is the stable category the transport maps to a status code.
type ErrorKind string

const (
	KindSelfReference   ErrorKind = "SELF_REFERENCE"
	KindDuplicateAction ErrorKind = "DUPLICATE_ACTION"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindNotOwner        ErrorKind = "NOT_OWNER"
	KindAlreadyInState  ErrorKind = "ALREADY_IN_STATE"
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized    ErrorKind = "UNAUTHORIZED"
)

// Error is the typed rejection every service returns. errors.Is matches on Kind, so
// callers compare against the sentinels below regardless of the message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrSelfReference   = &Error{Kind: KindSelfReference, Message: "self reference"}
	ErrDuplicateAction = &Error{Kind: KindDuplicateAction, Message: "duplicate action"}
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrNotOwner        = &Error{Kind: KindNotOwner, Message: "not owner"}
	ErrAlreadyInState  = &Error{Kind: KindAlreadyInState, Message: "already in target state"}
	ErrValidation      = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "unauthorized"}

	ErrFollowSelf   = &Error{Kind: KindSelfReference, Message: "cannot follow self"}
	ErrAlreadyLiked = &Error{Kind: KindDuplicateAction, Message: "already liked"}
	ErrNotLiked     = &Error{Kind: KindAlreadyInState, Message: "you haven't liked this post"}
)

func notFound(resource, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

func notOwner(resource string) error {
	return &Error{Kind: KindNotOwner, Message: fmt.Sprintf("you can only modify your own %ss", resource)}
}

func validationError(err error) error {
	return &Error{Kind: KindValidation, Message: "invalid input", Err: err}
}

// lookupErr turns a missing row into NotFound and wraps anything else.
func lookupErr(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource, id)
	}
	return fmt.Errorf("load %s %s: %w", resource, id, err)
}

// KindOf reports the kind of a service error, or "" for unexpected failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
