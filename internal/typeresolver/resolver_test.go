package typeresolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mark3labs/swagger2ng/internal/spec"
)

func TestResolve_Primitives(t *testing.T) {
	r := NewAngular()
	tests := []struct {
		declared string
		want     string
	}{
		{"string", "string"},
		{"integer", "number"},
		{"long", "number"},
		{"double", "number"},
		{"boolean", "boolean"},
		{"DateTime", "Date"},
		{"date", "string"},
		{"ByteArray", "string"},
		{"uuid", "string"},
		{"email", "string"},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(spec.Primitive(tt.declared)))
		})
	}
}

func TestResolve_ReferencesPassThrough(t *testing.T) {
	r := NewAngular()
	assert.Equal(t, "Pet", r.Resolve(spec.Ref("Pet")))
	assert.Equal(t, "Blob", r.Resolve(spec.Ref("Blob")))
	assert.Equal(t, "Array<Pet>", r.Resolve(spec.Ref("Array<Pet>")))
	// model names that look like string formats are still models
	assert.Equal(t, "Email", r.Resolve(spec.Ref("Email")))
}

func TestResolve_Array(t *testing.T) {
	r := NewAngular()
	assert.Equal(t, "Array<string>", r.Resolve(spec.ArrayOf(spec.Primitive("string"))))
	assert.Equal(t, "Array<Pet>", r.Resolve(spec.ArrayOf(spec.Ref("Pet"))))
	assert.Equal(t, "Array<any>", r.Resolve(spec.ArrayOf(nil)))
}

func TestResolve_ArrayWrapsElementType(t *testing.T) {
	r := NewAngular()
	elements := []*spec.Schema{
		spec.Primitive("integer"),
		spec.Ref("Pet"),
		spec.Object(),
		spec.File(),
		spec.MapOf(spec.Ref("Tag")),
		spec.ArrayOf(spec.Primitive("boolean")),
	}
	for _, el := range elements {
		assert.Equal(t, "Array<"+r.Resolve(el)+">", r.Resolve(spec.ArrayOf(el)))
	}
}

func TestResolve_NestingDepth(t *testing.T) {
	r := NewAngular()
	s := spec.Primitive("string")
	for i := 0; i < 50; i++ {
		s = spec.ArrayOf(spec.MapOf(s))
	}
	got := r.Resolve(s)
	assert.Equal(t, 50, strings.Count(got, "Array<"))
	assert.Equal(t, 50, strings.Count(got, "[key: string]"))
	assert.True(t, strings.HasPrefix(got, "Array<{ [key: string]: Array<"))
}

func TestResolve_Maps(t *testing.T) {
	r := NewAngular()
	assert.Equal(t, "{ [key: string]: number; }", r.Resolve(spec.MapOf(spec.Primitive("integer"))))
	assert.Equal(t, "{ [key: string]: Pet; }", r.Resolve(spec.MapOf(spec.Ref("Pet"))))
	assert.Equal(t, "{ [key: string]: any; }", r.Resolve(spec.FreeFormMap()))
	assert.Equal(t,
		"{ [key: string]: Array<{ [key: string]: Array<Tag>; }>; }",
		r.Resolve(spec.MapOf(spec.ArrayOf(spec.MapOf(spec.ArrayOf(spec.Ref("Tag")))))))
}

func TestResolve_FileAndObject(t *testing.T) {
	r := NewAngular()
	assert.Equal(t, "Blob", r.Resolve(spec.File()))
	assert.Equal(t, "any", r.Resolve(spec.Object()))
	assert.Equal(t, "any", r.Resolve(&spec.Schema{Kind: spec.KindObject, Name: "ignored", Description: "x"}))
	assert.Equal(t, "any", r.Resolve(nil))

	plain := New(TypeScriptMapping())
	assert.Equal(t, "any", plain.Resolve(spec.File()))
}

func TestNeedsImport(t *testing.T) {
	r := NewAngular()
	assert.True(t, r.NeedsImport("Pet"))
	assert.False(t, r.NeedsImport("string"))
	assert.False(t, r.NeedsImport("Blob"))
	assert.False(t, r.NeedsImport("Array<Pet>"))
	assert.False(t, r.NeedsImport("{ [key: string]: Pet; }"))
	assert.False(t, r.NeedsImport(""))
}

func TestImports(t *testing.T) {
	r := NewAngular()
	s := spec.MapOf(spec.ArrayOf(spec.Ref("Pet")))
	assert.Equal(t, []string{"Pet"}, r.Imports(s))
	assert.Empty(t, r.Imports(spec.Ref("Blob")))
	assert.Empty(t, r.Imports(spec.Primitive("string")))
}

func TestAdditionalPropertiesType(t *testing.T) {
	r := NewAngular()

	typ, register := r.AdditionalPropertiesType(spec.MapOf(spec.Ref("Pet")))
	assert.Equal(t, "Pet", typ)
	assert.True(t, register)

	typ, register = r.AdditionalPropertiesType(spec.FreeFormMap())
	assert.Equal(t, "any", typ)
	assert.False(t, register)

	typ, _ = r.AdditionalPropertiesType(spec.Object())
	assert.Empty(t, typ)
}
