// Package typeresolver maps schema nodes onto TypeScript type expressions.
package typeresolver

import (
	"strings"

	"github.com/mark3labs/swagger2ng/internal/spec"
)

const (
	// BlobType is the browser type used for files and binary payloads.
	BlobType = "Blob"

	listType = "Array"
)

// Resolver turns schema nodes into type strings. It holds no state beyond
// its mapping table and is safe to share.
type Resolver struct {
	mapping Mapping
}

func New(m Mapping) *Resolver {
	return &Resolver{mapping: m}
}

// NewAngular returns a Resolver over AngularMapping.
func NewAngular() *Resolver {
	return New(AngularMapping())
}

// Resolve returns the type declaration for s. Recursion depth equals the
// nesting depth of arrays and maps in s.
func (r *Resolver) Resolve(s *spec.Schema) string {
	if s == nil {
		return r.mapping.lookup("object")
	}
	switch s.Kind {
	case spec.KindReference:
		if r.IsPrimitive(s.Name) || r.IsGeneric(s.Name) {
			return s.Name
		}
		if mapped, ok := r.mapping.Types[s.Name]; ok {
			return mapped
		}
		return s.Name
	case spec.KindArray:
		return listType + "<" + r.Resolve(s.Items) + ">"
	case spec.KindMap:
		if s.HasValueSchema() {
			return indexSignature(r.Resolve(s.Value))
		}
		return indexSignature(r.Resolve(spec.Object()))
	case spec.KindFile:
		return r.mapping.lookup("file")
	case spec.KindObject:
		return r.mapping.lookup("object")
	default:
		return r.MapType(s.Name)
	}
}

// MapType applies the mapping table to a declared type name. Primitive and
// generic names are returned unchanged.
func (r *Resolver) MapType(name string) string {
	if r.IsPrimitive(name) || r.IsGeneric(name) {
		return name
	}
	return r.mapping.lookup(name)
}

// IsPrimitive reports whether name is a built-in type of the target language.
func (r *Resolver) IsPrimitive(name string) bool {
	_, ok := r.mapping.Primitives[name]
	return ok
}

// IsGeneric reports whether name is an instantiation of a generic container,
// matched by prefix up to the opening angle bracket.
func (r *Resolver) IsGeneric(name string) bool {
	for _, g := range r.mapping.Generics {
		if strings.HasPrefix(name, g+"<") {
			return true
		}
	}
	return false
}

// NeedsImport reports whether a resolved type refers to a generated model.
func (r *Resolver) NeedsImport(typ string) bool {
	if typ == "" || r.IsPrimitive(typ) || r.IsGeneric(typ) {
		return false
	}
	return !strings.ContainsAny(typ, "{}<>[]| ")
}

// Imports returns the resolved model types s depends on, in first-seen order.
func (r *Resolver) Imports(s *spec.Schema) []string {
	var out []string
	for _, name := range s.References() {
		if typ := r.Resolve(spec.Ref(name)); r.NeedsImport(typ) {
			out = append(out, typ)
		}
	}
	return out
}

// AdditionalPropertiesType returns the value type of a dictionary model. The
// boolean reports whether that type came from an explicit value schema and so
// must be registered as an import of the model.
func (r *Resolver) AdditionalPropertiesType(s *spec.Schema) (string, bool) {
	if s == nil || s.Kind != spec.KindMap {
		return "", false
	}
	if s.HasValueSchema() {
		return r.Resolve(s.Value), true
	}
	if s.AdditionalTrue {
		return r.Resolve(spec.Object()), false
	}
	return "", false
}

func indexSignature(valueType string) string {
	return "{ [key: string]: " + valueType + "; }"
}
