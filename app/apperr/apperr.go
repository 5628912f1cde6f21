// Package apperr holds the error kinds shared by the fetch, rewrite and
// publish paths. Every error that reaches the API boundary is an *Error whose
// Error() is the message shown to the user.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig    Kind = "config"
	KindTransport Kind = "transport"
	KindAPI       Kind = "api"
	KindParse     Kind = "parse"
	KindStorage   Kind = "storage"
	KindFetch     Kind = "fetch"
)

// Error is a classified failure. Message is what the caller sees; Err keeps
// the underlying cause for logs and errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind) + " error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrParse)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrConfig    = &Error{Kind: KindConfig}
	ErrTransport = &Error{Kind: KindTransport}
	ErrAPI       = &Error{Kind: KindAPI}
	ErrParse     = &Error{Kind: KindParse}
	ErrStorage   = &Error{Kind: KindStorage}
	ErrFetch     = &Error{Kind: KindFetch}
)

func Config(msg string) error {
	return &Error{Kind: KindConfig, Message: msg}
}

// Transport surfaces err verbatim.
func Transport(err error) error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func API(msg string) error {
	return &Error{Kind: KindAPI, Message: msg}
}

func Parse(msg string, err error) error {
	return &Error{Kind: KindParse, Message: msg, Err: err}
}

func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

func Fetch(url string, err error) error {
	return &Error{Kind: KindFetch, Message: fmt.Sprintf("fetch %s: %v", url, err), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
