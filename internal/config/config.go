package config

import (
	"os"
	"strconv"
	"strings"
)

// Source is a string key -> string value lookup with caller-supplied defaults.
// The production implementation reads process environment variables; tests
// substitute an in-memory map.
type Source interface {
	// Get returns the value for key, or fallback when the key is unset.
	Get(key, fallback string) string

	// GetBool returns the boolean value for key, or fallback when the key is
	// unset or not parseable as a boolean.
	GetBool(key string, fallback bool) bool
}

// Env is a Source backed by os.LookupEnv.
type Env struct{}

// NewEnv creates an environment-backed configuration source.
func NewEnv() *Env {
	return &Env{}
}

// Get implements the Source interface.
func (e *Env) Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetBool implements the Source interface.
func (e *Env) GetBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// Static is a Source backed by a fixed map. Used by tests and by the CLI when
// overriding single values.
type Static struct {
	values map[string]string
}

// NewStatic creates a map-backed configuration source.
func NewStatic(values map[string]string) *Static {
	if values == nil {
		values = make(map[string]string)
	}
	return &Static{values: values}
}

// Get implements the Source interface.
func (s *Static) Get(key, fallback string) string {
	if value, ok := s.values[key]; ok {
		return value
	}
	return fallback
}

// GetBool implements the Source interface.
func (s *Static) GetBool(key string, fallback bool) bool {
	value, ok := s.values[key]
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
