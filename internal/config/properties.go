package config

import (
	"fmt"
	"strings"
)

// SetProperty applies one key=value additional property. Keys match the
// config file names case-insensitively, ignoring dashes and underscores.
func (c *Config) SetProperty(key, value string) error {
	ap := &c.AdditionalProperties
	value = strings.TrimSpace(value)
	switch normalizeKey(key) {
	case "npmname":
		ap.NpmName = value
	case "npmversion":
		ap.NpmVersion = value
	case "npmrepository":
		ap.NpmRepository = value
	case "ngversion":
		ap.NgVersion = value
	case "snapshot":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: property %q: %v", ErrInvalidConfig, key, err)
		}
		ap.Snapshot = b
	case "withinterfaces":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: property %q: %v", ErrInvalidConfig, key, err)
		}
		ap.WithInterfaces = b
	default:
		return fmt.Errorf("%w: unknown property %q", ErrInvalidConfig, key)
	}
	return nil
}

// SetProperties applies "key=value" pairs in order.
func (c *Config) SetProperties(pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: property %q must be key=value", ErrInvalidConfig, pair)
		}
		if err := c.SetProperty(key, value); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeList trims entries, drops empties and duplicates, and keeps order.
func SanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Intersect returns the items of b also present in a.
func Intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", s)
	}
}
