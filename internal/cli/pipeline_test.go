package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /hello/{name}:\n" +
	"    get:\n" +
	"      summary: Hello\n" +
	"      parameters:\n" +
	"        - in: path\n" +
	"          name: name\n" +
	"          required: true\n" +
	"          schema: { type: string }\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n"

const traceSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Trace API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /echo:\n" +
	"    trace:\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n"

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writePipelineSpec(t *testing.T, content string) string {
	t.Helper()
	specPath := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(specPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	specPath := writePipelineSpec(t, minimalSpecYAML)
	outDir := filepath.Join(t.TempDir(), "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", outDir, "--dry-run", "--log-level", "error"})

	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "Planned writes to") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	for _, want := range []string{"- apis/default.service.json", "- context.json", "- flags.json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("plan missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesContexts(t *testing.T) {
	specPath := writePipelineSpec(t, minimalSpecYAML)
	outDir := filepath.Join(t.TempDir(), "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", outDir, "--ng-version", "4.0.0", "--log-level", "error"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	api, err := os.ReadFile(filepath.Join(outDir, "apis", "default.service.json"))
	if err != nil {
		t.Fatalf("read api context: %v", err)
	}
	for _, want := range []string{
		`"classname": "DefaultService"`,
		`"httpMethod": "RequestMethod.Get"`,
		"/hello/${encodeURIComponent(String(name))}",
	} {
		if !strings.Contains(string(api), want) {
			t.Fatalf("api context missing %s:\n%s", want, api)
		}
	}

	flags, err := os.ReadFile(filepath.Join(outDir, "flags.json"))
	if err != nil {
		t.Fatalf("read flags: %v", err)
	}
	if !strings.Contains(string(flags), `"useRxJSOperators": true`) || !strings.Contains(string(flags), `"useHttpClient": false`) {
		t.Fatalf("unexpected flags for 4.0.0:\n%s", flags)
	}

	ctx, err := os.ReadFile(filepath.Join(outDir, "context.json"))
	if err != nil {
		t.Fatalf("read context: %v", err)
	}
	if !strings.Contains(string(ctx), `"destination": "rxjs-operators.ts"`) {
		t.Fatalf("expected rxjs-operators supporting file:\n%s", ctx)
	}
}

func TestGeneratePipeline_UnknownMethodIsUsageError(t *testing.T) {
	specPath := writePipelineSpec(t, traceSpecYAML)
	outDir := filepath.Join(t.TempDir(), "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", outDir, "--ng-version", "4.2.0", "--log-level", "error"})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected TRACE operation to abort generation")
	}
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "TRACE") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected nothing written after a failed run")
	}
}

func TestGeneratePipeline_MissingSpec(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", filepath.Join(t.TempDir(), "missing.yaml"), "--dry-run", "--log-level", "error"})

	err := root.Execute()
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "Location:") {
		t.Fatalf("expected usage error with location, got %v", err)
	}
}
