package pathtemplate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(s string) string { return strings.ToUpper(s) }

func TestCompile_SinglePlaceholder(t *testing.T) {
	got, err := Compile("/pets/{id}", upper)
	require.NoError(t, err)
	assert.Equal(t, "/pets/${encodeURIComponent(String(ID))}", got.Template)
	assert.Equal(t, []Placeholder{{Raw: "id", Name: "ID"}}, got.Placeholders)
}

func TestCompile_TwoPlaceholdersInOrder(t *testing.T) {
	got, err := Compile("/a/{x}/b/{y}", nil)
	require.NoError(t, err)
	assert.Equal(t,
		"/a/${encodeURIComponent(String(x))}/b/${encodeURIComponent(String(y))}",
		got.Template)
	assert.Equal(t, []string{"x", "y"}, got.Names())
}

func TestCompile_AdjacentPlaceholdersResetBuffer(t *testing.T) {
	got, err := Compile("/{first}{second}.json", nil)
	require.NoError(t, err)
	assert.Equal(t,
		"/${encodeURIComponent(String(first))}${encodeURIComponent(String(second))}.json",
		got.Template)
}

func TestCompile_NoPlaceholders(t *testing.T) {
	got, err := Compile("/store/inventory?x=1", upper)
	require.NoError(t, err)
	assert.Equal(t, "/store/inventory?x=1", got.Template)
	assert.Empty(t, got.Placeholders)
}

func TestCompile_IgnoresDeclaredParameters(t *testing.T) {
	// any {identifier} is substituted, declared or not
	got, err := Compile("/users/{undeclared}", func(s string) string { return "v_" + s })
	require.NoError(t, err)
	assert.Equal(t, "/users/${encodeURIComponent(String(v_undeclared))}", got.Template)
}

func TestCompile_NestedOpenBraceIsNameCharacter(t *testing.T) {
	got, err := Compile("/x/{a{b}", nil)
	require.NoError(t, err)
	assert.Equal(t, "/x/${encodeURIComponent(String(a{b))}", got.Template)
	assert.Equal(t, "a{b", got.Placeholders[0].Raw)
}

func TestCompile_PreservesUnicode(t *testing.T) {
	got, err := Compile("/café/{nom}", nil)
	require.NoError(t, err)
	assert.Equal(t, "/café/${encodeURIComponent(String(nom))}", got.Template)

	got, err = Compile("/\uFFFD/{id}", nil)
	require.NoError(t, err)
	assert.Equal(t, "/\uFFFD/${encodeURIComponent(String(id))}", got.Template)
}

func TestCompile_Malformed(t *testing.T) {
	tests := []struct {
		path   string
		offset int
		reason string
	}{
		{"/pets/{id", 6, "unterminated placeholder"},
		{"/pets/id}", 8, "unexpected '}'"},
		{"/pets/{}", 6, "empty placeholder"},
		{"/a/{x}/b/{", 9, "unterminated placeholder"},
		{"/a\xffb/{id}", 2, "invalid UTF-8"},
		{"/a/{i\xc3}", 5, "invalid UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := Compile(tt.path, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPath))

			var pe *PathError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.offset, pe.Offset)
			assert.Equal(t, tt.reason, pe.Reason)
		})
	}
}

func TestCompiler_UsesTransform(t *testing.T) {
	c := Compiler{Transform: upper}
	got, err := c.Compile("/{a}")
	require.NoError(t, err)
	assert.Equal(t, "/${encodeURIComponent(String(A))}", got.Template)
}
