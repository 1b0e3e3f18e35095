// Package postprocess rewrites a built service model into the shape the
// Angular templates consume: resolved type strings, interpolated paths,
// method symbols and per-file import lists.
package postprocess

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mark3labs/swagger2ng/internal/features"
	"github.com/mark3labs/swagger2ng/internal/pathtemplate"
	"github.com/mark3labs/swagger2ng/internal/spec"
)

// TypeResolver maps schema nodes to TypeScript types.
type TypeResolver interface {
	Resolve(s *spec.Schema) string
	NeedsImport(typ string) bool
	AdditionalPropertiesType(s *spec.Schema) (string, bool)
}

// PathCompiler rewrites path templates.
type PathCompiler interface {
	Compile(path string) (pathtemplate.CompiledPath, error)
}

// Naming derives class, file and variable names.
type Naming interface {
	ToAPIName(name string) string
	APIFilenameFromClassname(classname string) string
	ToModelFilename(name string) string
	ToModelImport(name string) string
	ModelnameFromModelFilename(filename string) string
	ToVarName(name string) string
}

// Processor holds the collaborators of one generation run. Flags are fixed
// at construction.
type Processor struct {
	types  TypeResolver
	paths  PathCompiler
	names  Naming
	flags  features.Flags
	logger zerolog.Logger
}

func New(types TypeResolver, paths PathCompiler, names Naming, flags features.Flags, logger zerolog.Logger) *Processor {
	return &Processor{types: types, paths: paths, names: names, flags: flags, logger: logger}
}

// opUpdate is the derived state of one operation, committed only once the
// whole group has been processed.
type opUpdate struct {
	method     string
	path       string
	pathParams []string
	returnType string
	paramTypes []string
	paramNames []string
	imports    []string
}

// Operations post-processes every operation of g. On error g is unchanged.
func (p *Processor) Operations(g *spec.OperationGroup) error {
	if g == nil {
		return errors.New("postprocess: nil operation group")
	}
	modern := p.flags.Enabled(features.UseHttpClient)

	updates := make([]opUpdate, len(g.Operations))
	groupImports := newOrderedSet()
	for i, op := range g.Operations {
		var u opUpdate

		if modern {
			u.method = lowerMethod(op.Method)
		} else {
			m, err := ParseMethod(op.Method)
			if err != nil {
				return &UnknownMethodError{Method: op.Method, Operation: operationLabel(op)}
			}
			u.method = m.Symbol()
		}

		compiled, err := p.paths.Compile(op.Path)
		if err != nil {
			return fmt.Errorf("postprocess: operation %s: %w", operationLabel(op), err)
		}
		u.path = compiled.Template
		u.pathParams = compiled.Names()

		imports := newOrderedSet()
		p.register(imports, op.Imports...)
		for _, param := range op.Parameters {
			typ := p.types.Resolve(param.Schema)
			u.paramTypes = append(u.paramTypes, typ)
			name := param.EncodedName
			if name == "" {
				name = p.names.ToVarName(param.RawName)
			}
			u.paramNames = append(u.paramNames, name)
			p.collect(imports, param.Schema)
		}
		if op.ReturnSchema != nil {
			u.returnType = p.types.Resolve(op.ReturnSchema)
			p.collect(imports, op.ReturnSchema)
		}
		u.imports = imports.items()
		groupImports.add(u.imports...)
		updates[i] = u
	}

	if g.ClassName == "" {
		g.ClassName = p.names.ToAPIName(g.Name)
	}
	g.APIFilename = p.names.APIFilenameFromClassname(g.ClassName)
	for i, op := range g.Operations {
		u := updates[i]
		op.Method = u.method
		op.Path = u.path
		op.PathParams = u.pathParams
		op.ReturnType = u.returnType
		op.Imports = u.imports
		for j, param := range op.Parameters {
			param.DataType = u.paramTypes[j]
			param.EncodedName = u.paramNames[j]
		}
	}

	names := groupImports.sorted()
	g.Imports = make([]spec.OperationImport, 0, len(names))
	for _, name := range names {
		imp := p.names.ToModelImport(name)
		g.Imports = append(g.Imports, spec.OperationImport{
			Import:    imp,
			Filename:  imp,
			Classname: p.names.ModelnameFromModelFilename(imp),
		})
	}

	p.logger.Debug().
		Str("group", g.Name).
		Str("class", g.ClassName).
		Int("operations", len(g.Operations)).
		Int("imports", len(g.Imports)).
		Msg("processed operation group")
	return nil
}

// Models resolves property types of every model and derives its TSImports:
// the sorted, deduplicated imports minus the model itself.
func (p *Processor) Models(models []*spec.Model) {
	for _, m := range models {
		imports := newOrderedSet()
		p.register(imports, m.Imports...)

		for _, prop := range m.Properties {
			prop.DataType = p.types.Resolve(prop.Schema)
			p.collect(imports, prop.Schema)
		}
		if m.AdditionalProperties != nil {
			typ, register := p.types.AdditionalPropertiesType(m.AdditionalProperties)
			m.AdditionalPropertiesType = typ
			if register && p.types.NeedsImport(typ) {
				imports.add(typ)
			}
		}
		m.Imports = imports.items()
		m.TSImports = p.modelImports(m.ClassName, m.Imports)
	}
	p.logger.Debug().Int("models", len(models)).Msg("processed models")
}

func (p *Processor) modelImports(self string, imports []string) []spec.ModelImport {
	sorted := append([]string(nil), imports...)
	sort.Strings(sorted)
	out := make([]spec.ModelImport, 0, len(sorted))
	for _, name := range sorted {
		if name == self {
			continue
		}
		out = append(out, spec.ModelImport{Classname: name, Filename: p.names.ToModelFilename(name)})
	}
	return out
}

// collect registers every model type reachable from s.
func (p *Processor) collect(set *orderedSet, s *spec.Schema) {
	p.register(set, s.References()...)
}

// register adds the resolved form of each referenced model name. Names that
// resolve to a primitive, a generic or a TypeScript built-in are skipped.
func (p *Processor) register(set *orderedSet, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if typ := p.types.Resolve(spec.Ref(ref)); p.types.NeedsImport(typ) {
			set.add(typ)
		}
	}
}

func operationLabel(op *spec.Operation) string {
	if op.NickName != "" {
		return op.NickName
	}
	if op.ID != "" {
		return op.ID
	}
	return op.Method + " " + op.Path
}

type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]struct{}{}}
}

func (s *orderedSet) add(items ...string) {
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := s.seen[it]; ok {
			continue
		}
		s.seen[it] = struct{}{}
		s.order = append(s.order, it)
	}
}

func (s *orderedSet) items() []string {
	return append([]string(nil), s.order...)
}

func (s *orderedSet) sorted() []string {
	out := s.items()
	sort.Strings(out)
	return out
}
