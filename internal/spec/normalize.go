package spec

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/strfmt"

	"github.com/mark3labs/swagger2ng/internal/naming"
)

// DefaultGroup collects operations without tags.
const DefaultGroup = "default"

// BuildOption configures how the ServiceModel is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathGlobs   []string
	err         error
}

// WithIncludeTags keeps only endpoints that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes endpoints that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only endpoints using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) BuildOption {
	return func(c *buildConfig) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathGlobs keeps only endpoints whose raw path matches at least one
// doublestar pattern, e.g. "/pet/**". An invalid pattern fails the build.
func WithPathGlobs(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if !doublestar.ValidatePattern(p) {
				c.err = errors.Join(c.err, fmt.Errorf("invalid path glob %q: %w", p, doublestar.ErrBadPattern))
				continue
			}
			c.pathGlobs = append(c.pathGlobs, p)
		}
	}
}

// BuildServiceModel converts an OpenAPI v3 document into the internal model.
// Component schemas become models in name order; operations are grouped by
// their first tag, groups sorted by name and operations by path then method.
func BuildServiceModel(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*ServiceModel, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	sm := &ServiceModel{}
	if doc.Info != nil {
		sm.Title = safeStr(doc.Info.Title)
		sm.Version = safeStr(doc.Info.Version)
		sm.Description = safeStr(doc.Info.Description)
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		sm.BasePath = strings.TrimRight(safeStr(doc.Servers[0].URL), "/")
	}

	if doc.Components != nil {
		keys := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		for _, name := range keys {
			if m := buildModel(name, doc.Components.Schemas[name]); m != nil {
				sm.Models = append(sm.Models, m)
			}
		}
	}

	groups := map[string]*OperationGroup{}
	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		if !cfg.allowPath(p) {
			continue
		}

		ops := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{POST, item.Post},
			{PUT, item.Put},
			{DELETE, item.Delete},
			{PATCH, item.Patch},
			{HEAD, item.Head},
			{OPTIONS, item.Options},
			{TRACE, item.Trace},
		}
		for _, pair := range ops {
			if pair.o == nil {
				continue
			}
			if len(cfg.methods) > 0 {
				if _, ok := cfg.methods[pair.m]; !ok {
					continue
				}
			}
			tags := make([]string, 0, len(pair.o.Tags))
			for _, t := range pair.o.Tags {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
			if !allowByTags(tags, cfg) {
				continue
			}

			op := buildOperation(pair.m, p, item.Parameters, pair.o, tags)
			groupName := DefaultGroup
			if len(tags) > 0 {
				groupName = tags[0]
			}
			g, ok := groups[groupName]
			if !ok {
				g = &OperationGroup{Name: groupName}
				groups[groupName] = g
			}
			g.Operations = append(g.Operations, op)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sm.Groups = append(sm.Groups, groups[name])
	}
	return sm, nil
}

func (c *buildConfig) allowPath(p string) bool {
	if len(c.pathGlobs) == 0 {
		return true
	}
	for _, g := range c.pathGlobs {
		if ok, err := doublestar.Match(g, p); err == nil && ok {
			return true
		}
	}
	return false
}

func allowByTags(tags []string, cfg *buildConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func buildModel(name string, ref *openapi3.SchemaRef) *Model {
	if ref == nil {
		return nil
	}
	m := &Model{ClassName: naming.ToModelName(name)}
	if m.ClassName == "" {
		return nil
	}
	if ref.Ref != "" || ref.Value == nil {
		// alias of another component
		if target := Classify(ref); target.Kind == KindReference {
			m.Imports = []string{target.Name}
		}
		return m
	}

	v := ref.Value
	m.Description = safeStr(v.Description)
	props, required := collectProperties(v)

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	imports := newNameSet()
	for _, k := range keys {
		s := Classify(props[k])
		_, req := required[k]
		m.Properties = append(m.Properties, &Property{Name: k, Required: req, Schema: s})
		imports.add(s.References()...)
	}
	for _, sub := range v.AllOf {
		if sub != nil && sub.Ref != "" {
			imports.add(refName(sub.Ref))
		}
	}
	switch s := Classify(ref); s.Kind {
	case KindMap:
		m.AdditionalProperties = s
		imports.add(s.References()...)
	case KindArray:
		imports.add(s.References()...)
	}
	m.Imports = imports.items()
	return m
}

// collectProperties merges own properties with those of inline allOf members.
func collectProperties(v *openapi3.Schema) (openapi3.Schemas, map[string]struct{}) {
	props := openapi3.Schemas{}
	required := map[string]struct{}{}
	for _, sub := range v.AllOf {
		if sub == nil || sub.Ref != "" || sub.Value == nil {
			continue
		}
		for k, p := range sub.Value.Properties {
			props[k] = p
		}
		for _, r := range sub.Value.Required {
			required[r] = struct{}{}
		}
	}
	for k, p := range v.Properties {
		props[k] = p
	}
	for _, r := range v.Required {
		required[r] = struct{}{}
	}
	return props, required
}

func buildOperation(method HttpMethod, path string, pathParams openapi3.Parameters, o *openapi3.Operation, tags []string) *Operation {
	op := &Operation{
		ID:          string(method) + " " + path,
		Method:      string(method),
		Path:        path,
		Summary:     safeStr(o.Summary),
		Description: safeStr(o.Description),
		Tags:        tags,
	}
	if id := safeStr(o.OperationID); id != "" {
		op.NickName = naming.Camelize(id, true)
	} else {
		op.NickName = naming.Camelize(strings.ToLower(string(method))+" "+path, true)
	}

	// path-level parameters first, replaced in place by operation-level ones
	var params []*Parameter
	index := map[string]int{}
	for _, refs := range []openapi3.Parameters{pathParams, o.Parameters} {
		for _, pref := range refs {
			pm := toParameter(pref)
			if pm == nil {
				continue
			}
			key := pm.In + ":" + pm.RawName
			if i, ok := index[key]; ok {
				params[i] = pm
				continue
			}
			index[key] = len(params)
			params = append(params, pm)
		}
	}
	if o.RequestBody != nil && o.RequestBody.Value != nil {
		params = append(params, bodyParameters(o.RequestBody.Value)...)
	}
	op.Parameters = params
	op.ReturnSchema = returnSchema(o.Responses)

	imports := newNameSet()
	for _, p := range params {
		imports.add(p.Schema.References()...)
	}
	imports.add(op.ReturnSchema.References()...)
	op.Imports = imports.items()
	return op
}

func toParameter(pref *openapi3.ParameterRef) *Parameter {
	if pref == nil || pref.Value == nil {
		return nil
	}
	p := pref.Value
	return &Parameter{
		RawName:  safeStr(p.Name),
		In:       safeStr(p.In),
		Required: p.Required,
		Schema:   Classify(p.Schema),
	}
}

var formMediaTypes = []string{"multipart/form-data", "application/x-www-form-urlencoded"}

// bodyParameters turns a request body into either one "body" parameter or,
// for form encodings, one "formData" parameter per property.
func bodyParameters(rb *openapi3.RequestBody) []*Parameter {
	for _, mt := range formMediaTypes {
		media := rb.Content.Get(mt)
		if media == nil || media.Schema == nil || media.Schema.Value == nil {
			continue
		}
		s := media.Schema.Value
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		required := map[string]struct{}{}
		for _, r := range s.Required {
			required[r] = struct{}{}
		}
		out := make([]*Parameter, 0, len(keys))
		for _, k := range keys {
			_, req := required[k]
			out = append(out, &Parameter{RawName: k, In: "formData", Required: req, Schema: Classify(s.Properties[k])})
		}
		return out
	}
	media := preferredMedia(rb.Content)
	if media == nil {
		return nil
	}
	return []*Parameter{{RawName: "body", In: "body", Required: rb.Required, Schema: Classify(media.Schema)}}
}

// returnSchema picks the lowest 2xx response (or default) with a body.
func returnSchema(responses openapi3.Responses) *Schema {
	codes := make([]string, 0, len(responses))
	for code := range responses {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append(codes, "default")
	for _, code := range codes {
		rref := responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		if media := preferredMedia(rref.Value.Content); media != nil {
			return Classify(media.Schema)
		}
	}
	return nil
}

func preferredMedia(content openapi3.Content) *openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	if mt := content.Get("application/json"); mt != nil && mt.Schema != nil {
		return mt
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if mt := content[k]; mt != nil && mt.Schema != nil {
			return mt
		}
	}
	return nil
}

// Classify converts a kin-openapi schema into a Schema node.
func Classify(ref *openapi3.SchemaRef) *Schema {
	if ref == nil {
		return Object()
	}
	if ref.Ref != "" {
		return Ref(naming.ToModelName(refName(ref.Ref)))
	}
	v := ref.Value
	if v == nil {
		return Object()
	}

	out := classifyValue(v)
	out.Description = safeStr(v.Description)
	return out
}

func classifyValue(v *openapi3.Schema) *Schema {
	switch v.Type {
	case "array":
		return ArrayOf(Classify(v.Items))
	case "file":
		return File()
	case "string":
		if v.Format == "binary" {
			return File()
		}
		return Primitive(primitiveName(v.Type, v.Format))
	case "integer", "number", "boolean":
		return Primitive(primitiveName(v.Type, v.Format))
	case "object", "":
		if v.AdditionalProperties.Schema != nil {
			return MapOf(Classify(v.AdditionalProperties.Schema))
		}
		if v.AdditionalProperties.Has != nil && *v.AdditionalProperties.Has {
			return FreeFormMap()
		}
		return Object()
	default:
		return Primitive(v.Type)
	}
}

// primitiveName derives the declared type name from an OpenAPI type and format.
func primitiveName(typ, format string) string {
	switch typ {
	case "integer":
		if format == "int64" {
			return "long"
		}
		return "integer"
	case "number":
		switch format {
		case "float", "double":
			return format
		}
		return "number"
	case "boolean":
		return "boolean"
	case "string":
		switch format {
		case "":
			return "string"
		case "date":
			return "date"
		case "date-time":
			return "DateTime"
		case "byte":
			return "ByteArray"
		}
		if strfmt.Default.ContainsName(format) {
			return format
		}
		return "string"
	}
	return typ
}

func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func safeStr(s string) string { return strings.TrimSpace(s) }

type nameSet struct {
	seen  map[string]struct{}
	order []string
}

func newNameSet() *nameSet { return &nameSet{seen: map[string]struct{}{}} }

func (s *nameSet) add(names ...string) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := s.seen[n]; ok {
			continue
		}
		s.seen[n] = struct{}{}
		s.order = append(s.order, n)
	}
}

func (s *nameSet) items() []string { return s.order }
