package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/swagger2ng/internal/config"
	"github.com/mark3labs/swagger2ng/internal/emitter/ngemitter"
	"github.com/mark3labs/swagger2ng/internal/features"
	"github.com/mark3labs/swagger2ng/internal/generate"
	"github.com/mark3labs/swagger2ng/internal/logging"
	"github.com/mark3labs/swagger2ng/internal/postprocess"
	"github.com/mark3labs/swagger2ng/internal/spec"
)

const defaultOutDir = "angular-client"

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Angular client contexts from an OpenAPI/Swagger document",
		Long: "Generate Angular client contexts from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, SWAGGER2NG_* environment variables, or defaults.",
		Example: strings.TrimSpace(`  swagger2ng generate --input petstore.yaml --out ./client --ng-version 8.0.0
  swagger2ng generate --input petstore.yaml --npm-name @acme/petstore --snapshot
  swagger2ng --config swagger2ng.yaml generate --property withInterfaces=true --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}
	addGenerateFlags(cmd.Flags())
	return cmd
}

// addGenerateFlags registers the flags shared by generate and watch.
func addGenerateFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (derived from the spec title when omitted)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("include-paths", nil, "Only include paths matching these globs (e.g. /pet/**)")
	flags.String("ng-version", "", "Target Angular version (default "+features.DefaultVersion+")")
	flags.String("npm-name", "", "npm package name; enables package.json and friends")
	flags.String("npm-version", "", "npm package version (default "+config.DefaultNpmVersion+")")
	flags.String("npm-repository", "", "npm registry for publishing")
	flags.Bool("snapshot", false, "Append -SNAPSHOT.<timestamp> to the npm version")
	flags.Bool("with-interfaces", false, "Also render an interface for every API service")
	flags.StringArray("property", nil, "Additional property as key=value (repeatable)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")
}

// resolveGenerateConfig merges defaults, config file, environment and flags,
// in increasing precedence.
func resolveGenerateConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	envFile, err := flags.GetString("env-file")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath, config.WithEnvFile(envFile))
	if err != nil {
		return nil, configError(err)
	}
	if err := applyGenerateFlagOverrides(flags, cfg); err != nil {
		return nil, configError(err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) error {
	ap := &cfg.AdditionalProperties
	strs := map[string]*string{
		"input":          &cfg.Input,
		"out":            &cfg.Out,
		"log-level":      &cfg.LogLevel,
		"ng-version":     &ap.NgVersion,
		"npm-name":       &ap.NpmName,
		"npm-version":    &ap.NpmVersion,
		"npm-repository": &ap.NpmRepository,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	lists := map[string]*[]string{
		"include-tags":  &cfg.IncludeTags,
		"exclude-tags":  &cfg.ExcludeTags,
		"include-paths": &cfg.IncludePaths,
	}
	for name, dst := range lists {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = config.SanitizeList(value)
	}

	bools := map[string]*bool{
		"dry-run":         &cfg.DryRun,
		"force":           &cfg.Force,
		"verbose":         &cfg.Verbose,
		"snapshot":        &ap.Snapshot,
		"with-interfaces": &ap.WithInterfaces,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	// --property is applied last so it can override the dedicated flags.
	if flags.Changed("property") {
		pairs, err := flags.GetStringArray("property")
		if err != nil {
			return err
		}
		if err := cfg.SetProperties(pairs); err != nil {
			return err
		}
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return newUsageError(err.Error())
	}
	_, err = generateOnce(ctx, cfg, logger)
	return err
}

// generateOnce runs the whole pipeline: load, build, post-process, emit.
func generateOnce(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*ngemitter.Result, error) {
	doc, err := spec.Load(ctx, cfg.Input, spec.WithLogger(logging.Component(logger, "spec")))
	if err != nil {
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return nil, newUsageError(msg)
		}
		return nil, err
	}

	sm, err := spec.BuildServiceModel(
		ctx,
		doc,
		spec.WithIncludeTags(cfg.IncludeTags),
		spec.WithExcludeTags(cfg.ExcludeTags),
		spec.WithPathGlobs(cfg.IncludePaths),
	)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	bundle, err := generate.Run(ctx, sm, cfg, logging.Component(logger, "generate"))
	if err != nil {
		if errors.Is(err, postprocess.ErrUnknownMethod) {
			return nil, newUsageError(err.Error())
		}
		return nil, err
	}

	outDir := strings.TrimSpace(cfg.Out)
	if outDir == "" {
		outDir = deriveOutDir(sm.Title)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	res, err := ngemitter.Emit(ctx, bundle, ngemitter.Options{
		OutDir: outDir,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: logging.Component(logger, "emit"),
	})
	if err != nil {
		return nil, wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(res.Planned), paths)
	}
	return res, nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func configError(err error) error {
	if errors.Is(err, config.ErrInvalidConfig) {
		return newUsageError(err.Error())
	}
	return err
}

func wrapOutputError(err error, outDir string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

// deriveOutDir turns a spec title into a lower-case, dash-separated
// directory name.
func deriveOutDir(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	var b strings.Builder
	for _, part := range parts {
		var clean strings.Builder
		for _, r := range part {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
				clean.WriteRune(r)
			}
		}
		if clean.Len() == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(clean.String())
	}
	if b.Len() == 0 {
		return defaultOutDir
	}
	return b.String()
}
