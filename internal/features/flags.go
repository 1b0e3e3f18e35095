// Package features derives version-gated generation flags from the target
// Angular version.
package features

import (
	"strings"

	"github.com/rs/zerolog"
)

// DefaultVersion is used when no ngVersion is configured.
const DefaultVersion = "6.0.0"

// Flag names as exposed to the rendering stage.
const (
	UseNgPackagr         = "useNgPackagr"
	UseRxJS6             = "useRxJS6"
	InjectionTokenTyped  = "injectionTokenTyped"
	UseHttpClient        = "useHttpClient"
	UseHttpClientPackage = "useHttpClientPackage"
	UseRxJSOperators     = "useRxJSOperators"
)

const (
	typedInjectionToken  = "InjectionToken"
	legacyInjectionToken = "OpaqueToken"
)

// rule enables a flag for versions in [atLeast, below). A nil bound is open.
type rule struct {
	name    string
	atLeast *Version
	below   *Version
}

func (r rule) matches(v Version) bool {
	if r.atLeast != nil && !v.AtLeast(*r.atLeast) {
		return false
	}
	if r.below != nil && v.AtLeast(*r.below) {
		return false
	}
	return true
}

func ver(s string) *Version {
	v := MustParseVersion(s)
	return &v
}

var rules = []rule{
	{name: UseNgPackagr, atLeast: ver("8.0.0")},
	{name: UseRxJS6, atLeast: ver("6.0.0")},
	{name: InjectionTokenTyped, atLeast: ver("4.0.0")},
	{name: UseHttpClient, atLeast: ver("4.3.0")},
	{name: UseHttpClientPackage, atLeast: ver("4.3.0"), below: ver("8.0.0")},
	{name: UseRxJSOperators, below: ver("4.3.0")},
}

// Flags is the read-only result of a resolution. The zero value has every
// flag disabled.
type Flags struct {
	version Version
	enabled map[string]bool
}

// Enabled reports whether the named flag is set. Unknown names are false.
func (f Flags) Enabled(name string) bool { return f.enabled[name] }

func (f Flags) Version() Version { return f.version }

// InjectionToken is the Angular DI token type the generated module uses.
func (f Flags) InjectionToken() string {
	if f.Enabled(InjectionTokenTyped) {
		return typedInjectionToken
	}
	return legacyInjectionToken
}

// Map returns a copy of every known flag with its value.
func (f Flags) Map() map[string]bool {
	out := make(map[string]bool, len(rules))
	for _, r := range rules {
		out[r.name] = f.enabled[r.name]
	}
	return out
}

// ForVersion evaluates every rule against v independently.
func ForVersion(v Version) Flags {
	enabled := make(map[string]bool, len(rules))
	for _, r := range rules {
		enabled[r.name] = r.matches(v)
	}
	return Flags{version: v, enabled: enabled}
}

// Resolve parses version and derives the flag set. An empty version falls
// back to DefaultVersion with an info notice; a supplied but malformed one is
// an error.
func Resolve(version string, logger zerolog.Logger) (Flags, error) {
	if strings.TrimSpace(version) == "" {
		logger.Info().
			Str("ngVersion", DefaultVersion).
			Msg("no ngVersion configured, generating for the default Angular version (set additionalProperties.ngVersion to change)")
		version = DefaultVersion
	}
	v, err := ParseVersion(version)
	if err != nil {
		return Flags{}, err
	}
	return ForVersion(v), nil
}
