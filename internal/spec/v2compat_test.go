package spec

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRepairV2_MultipleBodyMerged(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    post:
      parameters:
      - in: body
        name: a
        required: true
        schema: { type: string }
      - in: body
        name: b
        schema: { type: integer }
      - in: query
        name: q
        type: string
      responses: { '200': { description: ok } }
`)
	out, repaired, err := repairV2Operations(in)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if len(repaired) != 1 || repaired[0] != "POST /x" {
		t.Fatalf("unexpected repaired list %v", repaired)
	}

	var doc struct {
		Paths map[string]map[string]struct {
			Parameters []map[string]any `yaml:"parameters"`
		} `yaml:"paths"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	params := doc.Paths["/x"]["post"].Parameters
	if len(params) != 2 {
		t.Fatalf("expected merged body + query, got %d params", len(params))
	}
	if params[0]["in"] != "body" || params[0]["name"] != "body" {
		t.Fatalf("expected merged body first, got %v", params[0])
	}
	schema, _ := params[0]["schema"].(map[string]any)
	props, _ := schema["properties"].(map[string]any)
	if len(props) != 2 {
		t.Fatalf("expected two merged properties, got %v", props)
	}
	if req, _ := schema["required"].([]any); len(req) != 1 || req[0] != "a" {
		t.Fatalf("expected required [a], got %v", schema["required"])
	}
}

func TestRepairV2_BodyAndFormData_ToFormData(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /upload:
    post:
      parameters:
      - in: body
        name: desc
        schema: { type: string }
      - in: formData
        name: file
        type: file
        required: true
      responses: { '200': { description: ok } }
`)
	out, repaired, err := repairV2Operations(in)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if len(repaired) != 1 {
		t.Fatalf("expected one repaired operation, got %v", repaired)
	}
	s := string(out)
	if strings.Contains(s, "in: body") {
		t.Fatalf("expected no body params after conversion to formData, got:\n%s", s)
	}
	if !strings.Contains(s, "multipart/form-data") {
		t.Fatalf("expected consumes multipart/form-data, got:\n%s", s)
	}
}

func TestRepairV2_CompliantUnchanged(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /pet:
    post:
      parameters:
      - in: body
        name: body
        schema: { $ref: '#/definitions/Pet' }
      responses: { '200': { description: ok } }
`)
	out, repaired, err := repairV2Operations(in)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if len(repaired) != 0 || string(out) != string(in) {
		t.Fatalf("expected document untouched, repaired=%v", repaired)
	}
}
