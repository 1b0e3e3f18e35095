// Package naming converts OpenAPI identifiers into TypeScript class, file
// and variable names.
//
// The API name and API filename conversions are paired: for every name N,
// APIFilenameFromClassname(ToAPIName(N)) == ToAPIFilename(N).
package naming

import (
	"strings"
	"unicode"
)

const (
	apiSuffix          = "Service"
	apiFilenameSuffix  = ".service"
	defaultAPIBaseName = "Default"
	modelPrefix        = "Model"
)

// reservedWords are identifiers a generated variable must not collide with:
// TypeScript keywords plus the locals used inside generated service methods.
var reservedWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"abstract", "await", "boolean", "break", "byte", "case", "catch", "char", "class",
		"const", "continue", "debugger", "default", "delete", "do", "double", "else", "enum",
		"export", "extends", "false", "final", "finally", "float", "for", "function", "goto",
		"if", "implements", "import", "in", "instanceof", "int", "interface", "let", "long",
		"native", "new", "null", "package", "private", "protected", "public", "return",
		"short", "static", "super", "switch", "synchronized", "this", "throw", "transient",
		"true", "try", "typeof", "var", "void", "volatile", "while", "with", "yield",
		"varLocalPath", "queryParameters", "headerParams", "formParams", "useFormData",
		"varLocalDeferred", "requestOptions",
	} {
		reservedWords[w] = struct{}{}
	}
}

// IsReserved reports whether name collides with a reserved identifier.
func IsReserved(name string) bool {
	_, ok := reservedWords[name]
	return ok
}

// Camelize joins the word parts of s, upper-casing the first rune of every
// part. Any rune that is not a letter or digit separates parts. With
// lowerFirst the first rune of the result is lower-cased.
// Example: "pet_store-api" -> "PetStoreApi", or "petStoreApi" with lowerFirst.
func Camelize(s string, lowerFirst bool) string {
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if lowerFirst {
		return lowerFirstRune(out)
	}
	return out
}

// InitialCaps upper-cases the first rune of s.
func InitialCaps(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func lowerFirstRune(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ToAPIName returns the service class name for an operation group.
func ToAPIName(name string) string {
	if name == "" {
		return defaultAPIBaseName + apiSuffix
	}
	return InitialCaps(name) + apiSuffix
}

// ToAPIFilename returns the file name (without extension) of a service.
func ToAPIFilename(name string) string {
	if name == "" {
		return strings.ToLower(defaultAPIBaseName) + apiFilenameSuffix
	}
	return Camelize(name, true) + apiFilenameSuffix
}

// APIFilenameFromClassname inverts ToAPIName and derives the filename the
// same way ToAPIFilename does for the original name.
func APIFilenameFromClassname(classname string) string {
	return ToAPIFilename(strings.TrimSuffix(classname, apiSuffix))
}

// ToAPIImport returns the import path of a service relative to the package root.
func ToAPIImport(apiPackage, name string) string {
	return apiPackage + "/" + ToAPIFilename(name)
}

// ToModelName returns the class name of a model. Names that would not form
// a valid identifier are prefixed with "Model".
func ToModelName(name string) string {
	out := Camelize(name, false)
	if out == "" {
		return out
	}
	if IsReserved(lowerFirstRune(out)) || unicode.IsDigit([]rune(out)[0]) {
		return modelPrefix + out
	}
	return out
}

// ToModelFilename returns the file name (without extension) of a model.
func ToModelFilename(name string) string {
	return Camelize(ToModelName(name), true)
}

// ToModelImport returns the import path of a model relative to the package root.
func ToModelImport(modelPackage, name string) string {
	return modelPackage + "/" + name
}

// ModelnameFromModelFilename strips the model package prefix from an import
// filename and returns the class name it refers to.
func ModelnameFromModelFilename(modelPackage, filename string) string {
	return Camelize(strings.TrimPrefix(filename, modelPackage+"/"), false)
}

// ToVarName converts a raw parameter or property name into a variable name.
// ALL_CAPS names are kept as they are.
func ToVarName(name string) string {
	name = sanitize(name)
	if name == "" {
		return name
	}
	if isAllCaps(name) {
		return name
	}
	name = Camelize(name, true)
	if name == "" {
		return "_"
	}
	if IsReserved(name) {
		return "_" + name
	}
	if unicode.IsDigit([]rune(name)[0]) {
		return "_" + name
	}
	return name
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func isAllCaps(name string) bool {
	hasUpper := false
	for _, r := range name {
		switch {
		case r == '_':
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			return false
		}
	}
	return hasUpper
}
