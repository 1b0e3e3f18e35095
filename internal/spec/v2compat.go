package spec

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Swagger 2.0 documents in the wild often declare several "in: body"
// parameters, or mix body and formData parameters. openapi2conv rejects
// both, so they are rewritten before conversion:
//   - body next to formData: every body parameter becomes a formData field
//     and the operation consumes multipart/form-data;
//   - several body parameters: they are merged into one object-typed body.

var v2Methods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {}, "options": {}, "head": {}, "patch": {},
}

type v2Param = map[string]any

// repairV2Operations returns the rewritten document and the "METHOD path"
// labels of every operation that changed. On a parse error data is returned
// as is.
func repairV2Operations(data []byte) ([]byte, []string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, nil, err
	}
	paths, _ := doc["paths"].(map[string]any)

	var repaired []string
	for path, rawItem := range paths {
		item, _ := rawItem.(map[string]any)
		for method, rawOp := range item {
			if _, ok := v2Methods[strings.ToLower(method)]; !ok {
				continue
			}
			op, _ := rawOp.(map[string]any)
			if op != nil && repairV2Operation(op) {
				repaired = append(repaired, strings.ToUpper(method)+" "+path)
			}
		}
	}
	if len(repaired) == 0 {
		return data, nil, nil
	}
	sort.Strings(repaired)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, nil, err
	}
	return out, repaired, nil
}

func repairV2Operation(op map[string]any) bool {
	list, _ := op["parameters"].([]any)
	var body, other []v2Param
	hasForm := false
	for _, raw := range list {
		p, _ := raw.(map[string]any)
		if p == nil {
			continue
		}
		switch in := strings.ToLower(stringField(p, "in")); in {
		case "body":
			body = append(body, p)
		case "formdata":
			hasForm = true
			other = append(other, p)
		default:
			other = append(other, p)
		}
	}

	switch {
	case len(body) > 0 && hasForm:
		params := make([]any, 0, len(list))
		for _, p := range other {
			params = append(params, p)
		}
		for _, b := range body {
			params = append(params, bodyAsFormField(b))
		}
		op["parameters"] = params
		consumes, _ := op["consumes"].([]any)
		for _, c := range consumes {
			if c == "multipart/form-data" {
				return true
			}
		}
		op["consumes"] = append(consumes, "multipart/form-data")
		return true
	case len(body) > 1:
		props := map[string]any{}
		var required []any
		for _, b := range body {
			name := stringField(b, "name")
			if name == "" {
				name = "field"
			}
			props[name] = paramSchema(b)
			if req, _ := b["required"].(bool); req {
				required = append(required, name)
			}
		}
		schema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			schema["required"] = required
		}
		params := []any{map[string]any{"in": "body", "name": "body", "schema": schema}}
		for _, p := range other {
			params = append(params, p)
		}
		op["parameters"] = params
		return true
	}
	return false
}

// paramSchema returns the schema of a body parameter, synthesizing one from
// type/format/items when absent.
func paramSchema(p v2Param) map[string]any {
	if s, ok := p["schema"].(map[string]any); ok {
		return s
	}
	s := map[string]any{"type": "string"}
	if t := stringField(p, "type"); t != "" {
		s["type"] = t
	}
	if f := stringField(p, "format"); f != "" {
		s["format"] = f
	}
	if items, ok := p["items"].(map[string]any); ok {
		s["items"] = items
	}
	return s
}

// bodyAsFormField degrades a body parameter to a formData field. Referenced
// objects cannot be form fields and become strings.
func bodyAsFormField(p v2Param) map[string]any {
	name := stringField(p, "name")
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": "formData", "name": name}
	if d := stringField(p, "description"); d != "" {
		out["description"] = d
	}
	if req, ok := p["required"].(bool); ok {
		out["required"] = req
	}

	s := paramSchema(p)
	typ := stringField(s, "type")
	if typ == "" || typ == "object" {
		typ = "string"
	}
	out["type"] = typ
	if f := stringField(s, "format"); f != "" {
		out["format"] = f
	}
	if items, ok := s["items"]; ok && typ == "array" {
		out["items"] = items
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
