// Package generate runs one post-processing pass over a service model and
// collects everything the Angular templates need into a Bundle.
package generate

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/mark3labs/swagger2ng/internal/config"
	"github.com/mark3labs/swagger2ng/internal/features"
	"github.com/mark3labs/swagger2ng/internal/naming"
	"github.com/mark3labs/swagger2ng/internal/pathtemplate"
	"github.com/mark3labs/swagger2ng/internal/postprocess"
	"github.com/mark3labs/swagger2ng/internal/spec"
	"github.com/mark3labs/swagger2ng/internal/typeresolver"
)

// SupportingFile is a project-level file rendered once per run.
type SupportingFile struct {
	Template    string `json:"template"`
	Folder      string `json:"folder"`
	Destination string `json:"destination"`
}

// Path is the output path relative to the project root.
func (f SupportingFile) Path() string { return path.Join(f.Folder, f.Destination) }

// TemplateFile is rendered once per API or model; Suffix is appended to the
// API or model filename.
type TemplateFile struct {
	Template string `json:"template"`
	Suffix   string `json:"suffix"`
}

// PackageInfo is the npm metadata, present only when npmName is set.
type PackageInfo struct {
	Name       string `json:"npmName"`
	Version    string `json:"npmVersion"`
	Repository string `json:"npmRepository,omitempty"`
}

type ServiceInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	BasePath    string `json:"basePath,omitempty"`
}

// Bundle is the complete output of a run.
type Bundle struct {
	Service         ServiceInfo
	NgVersion       string
	Flags           map[string]bool
	InjectionToken  string
	WithInterfaces  bool
	Package         *PackageInfo
	APIs            []*spec.OperationGroup
	Models          []*spec.Model
	SupportingFiles []SupportingFile
	APITemplates    []TemplateFile
	ModelTemplates  []TemplateFile
}

type settings struct {
	now   func() time.Time
	namer naming.Namer
}

// Option customizes Run.
type Option func(*settings)

// WithClock replaces time.Now for the snapshot version suffix.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithPackages overrides the API and model package names.
func WithPackages(apiPackage, modelPackage string) Option {
	return func(s *settings) {
		s.namer = naming.Namer{APIPackage: apiPackage, ModelPackage: modelPackage}
	}
}

// Run resolves the feature flags once, post-processes every operation group
// and then every model in order, and returns the assembled bundle. sm is
// rewritten in place. Any post-processing error aborts the run.
func Run(ctx context.Context, sm *spec.ServiceModel, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sm == nil {
		return nil, fmt.Errorf("generate: nil service model")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}

	flags, err := features.Resolve(cfg.AdditionalProperties.NgVersion, logger)
	if err != nil {
		return nil, fmt.Errorf("generate: ngVersion: %w", err)
	}

	proc := postprocess.New(
		typeresolver.NewAngular(),
		pathtemplate.Compiler{Transform: naming.ToVarName},
		s.namer,
		flags,
		logger,
	)
	for _, g := range sm.Groups {
		if err := proc.Operations(g); err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
	}
	proc.Models(sm.Models)

	ap := cfg.AdditionalProperties
	b := &Bundle{
		Service: ServiceInfo{
			Title:       sm.Title,
			Version:     sm.Version,
			Description: sm.Description,
			BasePath:    sm.BasePath,
		},
		NgVersion:      flags.Version().String(),
		Flags:          flags.Map(),
		InjectionToken: flags.InjectionToken(),
		WithInterfaces: ap.WithInterfaces,
		APIs:           sm.Groups,
		Models:         sm.Models,
		APITemplates:   apiTemplates(ap.WithInterfaces),
		ModelTemplates: []TemplateFile{{Template: "model.mustache", Suffix: ".ts"}},
	}
	if ap.NpmName != "" {
		b.Package = &PackageInfo{
			Name:       ap.NpmName,
			Version:    cfg.EffectiveNpmVersion(s.now()),
			Repository: ap.NpmRepository,
		}
	}
	b.SupportingFiles = supportingFiles(flags, b.Package != nil, s.namer)

	logger.Info().
		Str("ngVersion", b.NgVersion).
		Int("apis", len(b.APIs)).
		Int("models", len(b.Models)).
		Int("supportingFiles", len(b.SupportingFiles)).
		Msg("generation context ready")
	return b, nil
}

func apiTemplates(withInterfaces bool) []TemplateFile {
	out := []TemplateFile{{Template: "api.service.mustache", Suffix: ".ts"}}
	if withInterfaces {
		out = append(out, TemplateFile{Template: "apiInterface.mustache", Suffix: "Interface.ts"})
	}
	return out
}

func supportingFiles(flags features.Flags, npm bool, n naming.Namer) []SupportingFile {
	apiPkg, modelPkg := n.APIPackage, n.ModelPackage
	if apiPkg == "" {
		apiPkg = naming.DefaultAPIPackage
	}
	if modelPkg == "" {
		modelPkg = naming.DefaultModelPackage
	}

	files := []SupportingFile{
		{Template: "models.mustache", Folder: modelPkg, Destination: "models.ts"},
		{Template: "apis.mustache", Folder: apiPkg, Destination: "api.ts"},
		{Template: "index.mustache", Destination: "index.ts"},
		{Template: "api.module.mustache", Destination: "api.module.ts"},
		{Template: "configuration.mustache", Destination: "configuration.ts"},
		{Template: "variables.mustache", Destination: "variables.ts"},
		{Template: "encoder.mustache", Destination: "encoder.ts"},
		{Template: "gitignore", Destination: ".gitignore"},
		{Template: "npmignore", Destination: ".npmignore"},
		{Template: "git_push.sh.mustache", Destination: "git_push.sh"},
	}
	if flags.Enabled(features.UseRxJSOperators) {
		files = append(files, SupportingFile{Template: "rxjs-operators.mustache", Destination: "rxjs-operators.ts"})
	}
	if npm {
		files = append(files,
			SupportingFile{Template: "README.mustache", Destination: "README.md"},
			SupportingFile{Template: "package.mustache", Destination: "package.json"},
			SupportingFile{Template: "typings.mustache", Destination: "typings.json"},
			SupportingFile{Template: "tsconfig.mustache", Destination: "tsconfig.json"},
		)
		if flags.Enabled(features.UseNgPackagr) {
			files = append(files, SupportingFile{Template: "ng-package.mustache", Destination: "ng-package.json"})
		}
	}
	return files
}
