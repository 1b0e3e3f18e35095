package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultInitPath = "swagger2ng.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2ng configuration file",
		Long:  "Scaffold a commented swagger2ng configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force})
		},
	}

	cmd.Flags().String("out", defaultInitPath, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultInitPath
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every accepted key. Every key can also be set as
// SWAGGER2NG_<KEY>, e.g. SWAGGER2NG_ADDITIONALPROPERTIES_NGVERSION=8.0.0.
const sampleConfigYAML = `# swagger2ng configuration (YAML)
# All fields are optional. Precedence: command-line flags, then
# SWAGGER2NG_* environment variables, then this file.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Output directory. When omitted, derived from the spec title.
# out: ./client

# Only include operations with these tags.
# includeTags: [pet, store]

# Exclude operations with these tags.
# excludeTags: [internal]

# Only include paths matching these globs.
# includePaths: ["/pet/**"]

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directory.
# force: false

# Logging: trace|debug|info|warn|error. verbose forces debug.
# logLevel: info
# verbose: false

# additionalProperties:
#   # Target Angular version; defaults to 6.0.0.
#   ngVersion: 8.0.0

#   # Setting npmName adds package.json, README.md, tsconfig.json and typings.json.
#   npmName: "@acme/petstore-client"
#   npmVersion: 1.0.0
#   npmRepository: https://registry.example.com

#   # Append -SNAPSHOT.<yyyyMMddHHmm> to npmVersion.
#   snapshot: false

#   # Also render an interface for every API service.
#   withInterfaces: false
`
