// Package ngemitter writes a generation bundle to disk as the JSON contexts
// consumed by the Angular client templates: one file for the run, one for
// the feature flags, one per API service and one per model.
package ngemitter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mark3labs/swagger2ng/internal/generate"
	"github.com/mark3labs/swagger2ng/internal/naming"
	"github.com/mark3labs/swagger2ng/internal/spec"
)

// Options controls where and how the contexts are written.
type Options struct {
	OutDir string // required
	Force  bool   // write into a non-empty directory
	DryRun bool   // plan only
	Logger zerolog.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

type Result struct {
	Planned []PlannedFile
}

type runContext struct {
	Service         generate.ServiceInfo      `json:"service"`
	NgVersion       string                    `json:"ngVersion"`
	InjectionToken  string                    `json:"injectionToken"`
	WithInterfaces  bool                      `json:"withInterfaces"`
	Package         *generate.PackageInfo     `json:"npm,omitempty"`
	APIs            []fileRef                 `json:"apis"`
	Models          []fileRef                 `json:"models"`
	SupportingFiles []generate.SupportingFile `json:"supportingFiles"`
	APITemplates    []generate.TemplateFile   `json:"apiTemplates"`
	ModelTemplates  []generate.TemplateFile   `json:"modelTemplates"`
}

type fileRef struct {
	Classname string `json:"classname"`
	Filename  string `json:"filename"`
}

type apiContext struct {
	Classname     string                 `json:"classname"`
	ClassFilename string                 `json:"classFilename"`
	BaseName      string                 `json:"baseName"`
	Imports       []spec.OperationImport `json:"imports"`
	Operations    []operationContext     `json:"operations"`
}

type operationContext struct {
	Nickname   string         `json:"nickname"`
	HTTPMethod string         `json:"httpMethod"`
	Path       string         `json:"path"`
	PathParams []string       `json:"pathParams,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	ReturnType string         `json:"returnType,omitempty"`
	AllParams  []paramContext `json:"allParams"`
}

type paramContext struct {
	ParamName string `json:"paramName"`
	BaseName  string `json:"baseName"`
	In        string `json:"in"`
	Required  bool   `json:"required"`
	DataType  string `json:"dataType"`
}

type modelContext struct {
	Classname                string             `json:"classname"`
	ClassFilename            string             `json:"classFilename"`
	Description              string             `json:"description,omitempty"`
	Vars                     []varContext       `json:"vars"`
	AdditionalPropertiesType string             `json:"additionalPropertiesType,omitempty"`
	TSImports                []spec.ModelImport `json:"tsImports"`
}

type varContext struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	DataType string `json:"datatype"`
}

// Emit renders the bundle into OutDir. Files are planned in sorted order and
// written only when DryRun is false.
func Emit(ctx context.Context, b *generate.Bundle, opts Options) (*Result, error) {
	if b == nil {
		return nil, fmt.Errorf("ngemitter: nil bundle")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("ngemitter: OutDir is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := map[string][]byte{}
	put := func(rel string, v any) error {
		if _, dup := files[rel]; dup {
			return fmt.Errorf("ngemitter: %s is produced twice; rename one of the colliding components", rel)
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("ngemitter: marshal %s: %w", rel, err)
		}
		files[rel] = append(data, '\n')
		return nil
	}

	rc := runContext{
		Service:         b.Service,
		NgVersion:       b.NgVersion,
		InjectionToken:  b.InjectionToken,
		WithInterfaces:  b.WithInterfaces,
		Package:         b.Package,
		APIs:            []fileRef{},
		Models:          []fileRef{},
		SupportingFiles: b.SupportingFiles,
		APITemplates:    b.APITemplates,
		ModelTemplates:  b.ModelTemplates,
	}
	for _, g := range b.APIs {
		rc.APIs = append(rc.APIs, fileRef{Classname: g.ClassName, Filename: g.APIFilename})
		if err := put(path.Join("apis", g.APIFilename+".json"), newAPIContext(g)); err != nil {
			return nil, err
		}
	}
	for _, m := range b.Models {
		filename := naming.ToModelFilename(m.ClassName)
		rc.Models = append(rc.Models, fileRef{Classname: m.ClassName, Filename: filename})
		if err := put(path.Join("models", filename+".json"), newModelContext(m, filename)); err != nil {
			return nil, err
		}
	}
	if err := put("context.json", rc); err != nil {
		return nil, err
	}
	if err := put("flags.json", b.Flags); err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
		opts.Logger.Debug().Str("file", rel).Int("size", len(files[rel])).Msg("planned")
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
		opts.Logger.Info().Str("out", opts.OutDir).Int("files", len(planned)).Msg("contexts written")
	}
	return &Result{Planned: planned}, nil
}

func newAPIContext(g *spec.OperationGroup) apiContext {
	out := apiContext{
		Classname:     g.ClassName,
		ClassFilename: g.APIFilename,
		BaseName:      g.Name,
		Imports:       g.Imports,
		Operations:    make([]operationContext, 0, len(g.Operations)),
	}
	if out.Imports == nil {
		out.Imports = []spec.OperationImport{}
	}
	for _, op := range g.Operations {
		oc := operationContext{
			Nickname:   op.NickName,
			HTTPMethod: op.Method,
			Path:       op.Path,
			PathParams: op.PathParams,
			Summary:    op.Summary,
			Notes:      op.Description,
			ReturnType: op.ReturnType,
			AllParams:  make([]paramContext, 0, len(op.Parameters)),
		}
		for _, p := range op.Parameters {
			oc.AllParams = append(oc.AllParams, paramContext{
				ParamName: p.EncodedName,
				BaseName:  p.RawName,
				In:        p.In,
				Required:  p.Required,
				DataType:  p.DataType,
			})
		}
		out.Operations = append(out.Operations, oc)
	}
	return out
}

func newModelContext(m *spec.Model, filename string) modelContext {
	out := modelContext{
		Classname:                m.ClassName,
		ClassFilename:            filename,
		Description:              m.Description,
		Vars:                     make([]varContext, 0, len(m.Properties)),
		AdditionalPropertiesType: m.AdditionalPropertiesType,
		TSImports:                m.TSImports,
	}
	if out.TSImports == nil {
		out.TSImports = []spec.ModelImport{}
	}
	for _, p := range m.Properties {
		out.Vars = append(out.Vars, varContext{Name: p.Name, Required: p.Required, DataType: p.DataType})
	}
	return out
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("ngemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	stamp := time.Now().Format("20060102150405")
	for rel, content := range files {
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		tmp := p + ".tmp-" + stamp
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
