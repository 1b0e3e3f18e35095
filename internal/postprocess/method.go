package postprocess

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownMethod is wrapped by UnknownMethodError.
var ErrUnknownMethod = errors.New("unsupported HTTP method")

// Method is an HTTP method the legacy Angular Http service can issue.
type Method int

const (
	Get Method = iota
	Post
	Put
	Delete
	Options
	Head
	Patch
	methodCount
)

var methodNames = [...]string{
	Get:     "GET",
	Post:    "POST",
	Put:     "PUT",
	Delete:  "DELETE",
	Options: "OPTIONS",
	Head:    "HEAD",
	Patch:   "PATCH",
}

var methodSymbols = [...]string{
	Get:     "RequestMethod.Get",
	Post:    "RequestMethod.Post",
	Put:     "RequestMethod.Put",
	Delete:  "RequestMethod.Delete",
	Options: "RequestMethod.Options",
	Head:    "RequestMethod.Head",
	Patch:   "RequestMethod.Patch",
}

// Both tables must cover every Method exactly.
var (
	_ = [1]struct{}{}[len(methodNames)-int(methodCount)]
	_ = [1]struct{}{}[len(methodSymbols)-int(methodCount)]
)

var lowerEnglish = cases.Lower(language.English)

// UnknownMethodError names an operation whose method has no RequestMethod
// symbol.
type UnknownMethodError struct {
	Method    string
	Operation string
}

func (e *UnknownMethodError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("unknown method %q", e.Method)
	}
	return fmt.Sprintf("operation %s: unknown method %q", e.Operation, e.Method)
}

func (e *UnknownMethodError) Is(target error) bool { return target == ErrUnknownMethod }

// ParseMethod matches s exactly against the upper-case method names.
func ParseMethod(s string) (Method, error) {
	for m := Get; m < methodCount; m++ {
		if methodNames[m] == s {
			return m, nil
		}
	}
	return 0, &UnknownMethodError{Method: s}
}

func (m Method) String() string {
	if m < 0 || m >= methodCount {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Symbol returns the RequestMethod constant for m.
func (m Method) Symbol() string {
	if m < 0 || m >= methodCount {
		return ""
	}
	return methodSymbols[m]
}

// lowerMethod is the HttpClient spelling of a method.
func lowerMethod(s string) string {
	return lowerEnglish.String(strings.TrimSpace(s))
}
