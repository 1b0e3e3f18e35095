// Package config loads swagger2ng settings from config files, dotenv files
// and SWAGGER2NG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mark3labs/swagger2ng/internal/features"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "SWAGGER2NG"

const (
	DefaultNpmVersion = "1.0.0"
	DefaultEnvFile    = ".env"

	snapshotLayout = "200601021504"
)

// ErrInvalidConfig is matched by every error Load and Validate return for bad
// user input.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the merged result of defaults, config file, environment and flags.
// After Validate succeeds it is treated as read-only.
type Config struct {
	// Input is a path or http(s) URL of the OpenAPI/Swagger document
	Input string `mapstructure:"input" yaml:"input" json:"input"`

	// Out is the output directory for the generation context
	Out string `mapstructure:"out" yaml:"out" json:"out"`

	IncludeTags  []string `mapstructure:"includeTags" yaml:"includeTags" json:"includeTags"`
	ExcludeTags  []string `mapstructure:"excludeTags" yaml:"excludeTags" json:"excludeTags"`
	IncludePaths []string `mapstructure:"includePaths" yaml:"includePaths" json:"includePaths"`

	DryRun   bool   `mapstructure:"dryRun" yaml:"dryRun" json:"dryRun"`
	Force    bool   `mapstructure:"force" yaml:"force" json:"force"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	LogLevel string `mapstructure:"logLevel" yaml:"logLevel" json:"logLevel"`

	AdditionalProperties AdditionalProperties `mapstructure:"additionalProperties" yaml:"additionalProperties" json:"additionalProperties"`

	// ConfigPath is the file the values were read from, if any.
	ConfigPath string `mapstructure:"-" yaml:"-" json:"-"`
}

// AdditionalProperties are the generator options passed through to the
// rendering stage.
type AdditionalProperties struct {
	// NpmName gates package metadata and the npm supporting files
	NpmName string `mapstructure:"npmName" yaml:"npmName" json:"npmName"`

	NpmVersion    string `mapstructure:"npmVersion" yaml:"npmVersion" json:"npmVersion"`
	NpmRepository string `mapstructure:"npmRepository" yaml:"npmRepository" json:"npmRepository"`

	// Snapshot appends a UTC timestamp to NpmVersion
	Snapshot bool `mapstructure:"snapshot" yaml:"snapshot" json:"snapshot"`

	// WithInterfaces requests an interface-only variant of every API service
	WithInterfaces bool `mapstructure:"withInterfaces" yaml:"withInterfaces" json:"withInterfaces"`

	// NgVersion is the target Angular version; empty means features.DefaultVersion
	NgVersion string `mapstructure:"ngVersion" yaml:"ngVersion" json:"ngVersion"`
}

// configFileNames are searched in the working directory when no path is given.
var configFileNames = []string{
	"swagger2ng.yaml",
	"swagger2ng.yml",
	"swagger2ng.json",
	".swagger2ng.yaml",
}

// knownKeys holds every key Load accepts, lower-cased as viper reports them.
var knownKeys = map[string]struct{}{}

func init() {
	for _, k := range []string{
		"input", "out", "includeTags", "excludeTags", "includePaths",
		"dryRun", "force", "verbose", "logLevel",
		"additionalProperties.npmName", "additionalProperties.npmVersion",
		"additionalProperties.npmRepository", "additionalProperties.snapshot",
		"additionalProperties.withInterfaces", "additionalProperties.ngVersion",
	} {
		knownKeys[strings.ToLower(k)] = struct{}{}
	}
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		AdditionalProperties: AdditionalProperties{
			NpmVersion: DefaultNpmVersion,
		},
	}
}

type loadSettings struct {
	envFile    string
	searchDirs []string
}

// LoadOption customizes Load.
type LoadOption func(*loadSettings)

// WithEnvFile loads path into the environment before variables are read.
// A missing default .env is ignored; a missing explicit file is an error.
func WithEnvFile(path string) LoadOption {
	return func(s *loadSettings) { s.envFile = path }
}

// WithSearchDirs overrides the directories searched for a config file when no
// explicit path is given.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(s *loadSettings) { s.searchDirs = dirs }
}

// Load merges defaults, the config file at configPath (or the first of
// configFileNames found) and SWAGGER2NG_* environment variables.
func Load(configPath string, opts ...LoadOption) (*Config, error) {
	settings := loadSettings{searchDirs: []string{"."}}
	for _, opt := range opts {
		opt(&settings)
	}

	if err := loadEnvFile(settings.envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := strings.TrimSpace(configPath)
	if path == "" {
		path = findConfigFile(settings.searchDirs)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read config file %q: %v", ErrInvalidConfig, path, err)
		}
		if unknown := unknownKeys(v.AllKeys()); len(unknown) > 0 {
			return nil, fmt.Errorf("%w: config file %q: unknown field(s) %s", ErrInvalidConfig, path, strings.Join(unknown, ", "))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", ErrInvalidConfig, err)
	}
	cfg.ConfigPath = path
	return &cfg, nil
}

func loadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("%w: env file %q: %v", ErrInvalidConfig, path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: env file %q: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func findConfigFile(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range configFileNames {
			p := name
			if dir != "" && dir != "." {
				p = strings.TrimRight(dir, "/") + "/" + name
			}
			if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
				return p
			}
		}
	}
	return ""
}

func unknownKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		if _, ok := knownKeys[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input", "")
	v.SetDefault("out", "")
	v.SetDefault("includeTags", []string{})
	v.SetDefault("excludeTags", []string{})
	v.SetDefault("includePaths", []string{})
	v.SetDefault("dryRun", false)
	v.SetDefault("force", false)
	v.SetDefault("verbose", false)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("additionalProperties.npmName", "")
	v.SetDefault("additionalProperties.npmVersion", d.AdditionalProperties.NpmVersion)
	v.SetDefault("additionalProperties.npmRepository", "")
	v.SetDefault("additionalProperties.snapshot", false)
	v.SetDefault("additionalProperties.withInterfaces", false)
	v.SetDefault("additionalProperties.ngVersion", "")
}

// Normalize trims string fields and deduplicates list fields.
func (c *Config) Normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.IncludeTags = SanitizeList(c.IncludeTags)
	c.ExcludeTags = SanitizeList(c.ExcludeTags)
	c.IncludePaths = SanitizeList(c.IncludePaths)

	ap := &c.AdditionalProperties
	ap.NpmName = strings.TrimSpace(ap.NpmName)
	ap.NpmVersion = strings.TrimSpace(ap.NpmVersion)
	ap.NpmRepository = strings.TrimSpace(ap.NpmRepository)
	ap.NgVersion = strings.TrimSpace(ap.NgVersion)
	if ap.NpmVersion == "" {
		ap.NpmVersion = DefaultNpmVersion
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Input == "" {
		errs = append(errs, ValidationError{Field: "input", Message: "is required (set via --input, config file or SWAGGER2NG_INPUT)"})
	}
	if overlap := Intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		errs = append(errs, ValidationError{
			Field:   "includeTags",
			Message: "overlaps excludeTags: " + strings.Join(overlap, ", "),
		})
	}
	for _, p := range c.IncludePaths {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, ValidationError{Field: "includePaths", Message: fmt.Sprintf("invalid glob %q", p)})
		}
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, ValidationError{Field: "logLevel", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
		}
	}
	if v := c.AdditionalProperties.NgVersion; v != "" {
		if _, err := features.ParseVersion(v); err != nil {
			errs = append(errs, ValidationError{Field: "additionalProperties.ngVersion", Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EffectiveNpmVersion is NpmVersion, suffixed with -SNAPSHOT.<yyyyMMddHHmm>
// in UTC when Snapshot is set.
func (c *Config) EffectiveNpmVersion(now time.Time) string {
	v := c.AdditionalProperties.NpmVersion
	if v == "" {
		v = DefaultNpmVersion
	}
	if c.AdditionalProperties.Snapshot {
		v += "-SNAPSHOT." + now.UTC().Format(snapshotLayout)
	}
	return v
}
