package typeresolver

import "github.com/go-openapi/strfmt"

// Mapping is the table a Resolver falls back to once the structural rules
// have been applied: declared names are looked up in Types, names listed in
// Primitives and names starting with a Generics prefix are never rewritten.
type Mapping struct {
	Types      map[string]string
	Primitives map[string]struct{}
	Generics   []string
}

// TypeScriptMapping returns the mapping shared by every TypeScript target.
func TypeScriptMapping() Mapping {
	m := Mapping{
		Types: map[string]string{
			"Array":      "Array",
			"array":      "Array",
			"List":       "Array",
			"boolean":    "boolean",
			"string":     "string",
			"int":        "number",
			"float":      "number",
			"number":     "number",
			"BigDecimal": "number",
			"long":       "number",
			"short":      "number",
			"char":       "string",
			"double":     "number",
			"object":     "any",
			"integer":    "number",
			"Map":        "any",
			"date":       "string",
			"DateTime":   "Date",
			"binary":     "any",
			"File":       "any",
			"file":       "any",
			"ByteArray":  "string",
			"UUID":       "string",
			"Error":      "Error",
		},
		Primitives: map[string]struct{}{},
		Generics:   []string{"Array"},
	}
	for _, p := range []string{
		"string", "String", "boolean", "Boolean", "Double", "Integer", "Long", "Float",
		"Object", "Array", "Date", "number", "any", "File", "Error", "Map",
	} {
		m.Primitives[p] = struct{}{}
	}
	return m
}

// AngularMapping extends TypeScriptMapping with the browser Blob type used
// for file and binary payloads.
func AngularMapping() Mapping {
	m := TypeScriptMapping()
	m.Primitives[BlobType] = struct{}{}
	m.Types["file"] = BlobType
	return m
}

// lookup applies the Types table. Names of registered string formats
// (uuid, email, ...) that have no entry of their own are strings on the wire.
func (m Mapping) lookup(name string) string {
	if mapped, ok := m.Types[name]; ok {
		return mapped
	}
	if strfmt.Default.ContainsName(name) {
		return m.Types["string"]
	}
	return name
}
