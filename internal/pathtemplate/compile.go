// Package pathtemplate rewrites OpenAPI path templates into TypeScript
// template-literal bodies whose placeholders are percent-encoded.
//
// "/pets/{pet_id}" compiles to "/pets/${encodeURIComponent(String(petId))}".
//
// The compiler is purely lexical: any {name} is a placeholder whether or not
// the operation declares such a parameter. A '{' inside a placeholder is part
// of the name. Unterminated placeholders, '}' outside a placeholder and empty
// placeholders are rejected, as is any byte sequence that is not valid UTF-8.
package pathtemplate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	openToken  = "${encodeURIComponent(String("
	closeToken = "))}"
)

// ErrMalformedPath is wrapped by every PathError.
var ErrMalformedPath = errors.New("malformed path template")

// PathError reports where a path template stopped being well formed.
type PathError struct {
	Path   string
	Offset int
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %s at offset %d", e.Path, e.Reason, e.Offset)
}

func (e *PathError) Unwrap() error { return ErrMalformedPath }

// NameTransform maps a raw parameter name to a target-language variable name.
type NameTransform func(string) string

// Placeholder is one substitution point, in path order.
type Placeholder struct {
	Raw  string // name between the braces
	Name string // transformed variable name
}

type CompiledPath struct {
	Template     string
	Placeholders []Placeholder
}

// Names returns the transformed placeholder names in path order.
func (c CompiledPath) Names() []string {
	out := make([]string, 0, len(c.Placeholders))
	for _, p := range c.Placeholders {
		out = append(out, p.Name)
	}
	return out
}

type state int

const (
	outside state = iota
	insideBrace
)

// Compile rewrites path in a single pass. A nil transform keeps names as is.
func Compile(path string, transform NameTransform) (CompiledPath, error) {
	if transform == nil {
		transform = func(s string) string { return s }
	}

	var (
		out    strings.Builder
		name   strings.Builder
		st     = outside
		opened int
		result CompiledPath
	)
	out.Grow(len(path) + 32)

	for i, r := range path {
		if r == utf8.RuneError {
			if _, w := utf8.DecodeRuneInString(path[i:]); w == 1 {
				return CompiledPath{}, &PathError{Path: path, Offset: i, Reason: "invalid UTF-8"}
			}
		}
		switch st {
		case outside:
			switch r {
			case '{':
				out.WriteString(openToken)
				name.Reset()
				opened = i
				st = insideBrace
			case '}':
				return CompiledPath{}, &PathError{Path: path, Offset: i, Reason: "unexpected '}'"}
			default:
				out.WriteRune(r)
			}
		case insideBrace:
			if r != '}' {
				name.WriteRune(r)
				continue
			}
			raw := name.String()
			if raw == "" {
				return CompiledPath{}, &PathError{Path: path, Offset: opened, Reason: "empty placeholder"}
			}
			v := transform(raw)
			out.WriteString(v)
			out.WriteString(closeToken)
			result.Placeholders = append(result.Placeholders, Placeholder{Raw: raw, Name: v})
			st = outside
		}
	}
	if st == insideBrace {
		return CompiledPath{}, &PathError{Path: path, Offset: opened, Reason: "unterminated placeholder"}
	}

	result.Template = out.String()
	return result, nil
}

// Compiler adapts Compile to a fixed name transform.
type Compiler struct {
	Transform NameTransform
}

func (c Compiler) Compile(path string) (CompiledPath, error) {
	return Compile(path, c.Transform)
}
