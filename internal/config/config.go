// Package config holds compiler-wide constants and the project manifest
// loader, in the teacher's style of keeping these as a small, dependency-
// light package separate from the driver.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the compiler's own version string, bumped on release.
const Version = "0.1.0"

// SourceFileExtension is the recognized Spice source suffix.
const SourceFileExtension = ".spc"

// Built-in type names recognized by the type checker and transformer.
const (
	BuiltinInt   = "int"
	BuiltinStr   = "str"
	BuiltinBool  = "bool"
	BuiltinFloat = "float"
	BuiltinNone  = "None"
)

// EmitMode selects the transformer's target dialect.
type EmitMode string

const (
	EmitPy  EmitMode = "py"
	EmitPyx EmitMode = "pyx"
	EmitExe EmitMode = "exe" // equivalent to EmitPyx at the core level
)

// OverloadStrategy selects how the overload resolver disambiguates
// overloads for a given compilation unit.
type OverloadStrategy string

const (
	OverloadRename   OverloadStrategy = "rename"
	OverloadDispatch OverloadStrategy = "dispatch"
)

// CompileOptions is supplied by the driver and threaded through every pass.
type CompileOptions struct {
	Emit             EmitMode
	Check            bool
	Verbose          bool
	NoFinalCheck     bool
	RuntimeChecks    bool
	OverloadStrategy OverloadStrategy
}

// DefaultCompileOptions returns the options a bare CLI invocation uses when
// no project manifest overrides them.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{Emit: EmitPy, OverloadStrategy: OverloadRename}
}

// Manifest is the project configuration file (spicec.yaml): module search
// roots and default compile options for a directory of Spice sources.
type Manifest struct {
	SearchRoots      []string         `yaml:"search_roots"`
	Emit             EmitMode         `yaml:"emit"`
	RuntimeChecks    bool             `yaml:"runtime_checks"`
	NoFinalCheck     bool             `yaml:"no_final_check"`
	OverloadStrategy OverloadStrategy `yaml:"overload_strategy"`
}

// LoadManifest reads and parses a spicec.yaml file at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Emit == "" {
		m.Emit = EmitPy
	}
	if m.OverloadStrategy == "" {
		m.OverloadStrategy = OverloadRename
	}
	return &m, nil
}

// ToCompileOptions converts a loaded manifest into CompileOptions, leaving
// Check/Verbose for the CLI invocation itself to set.
func (m *Manifest) ToCompileOptions() CompileOptions {
	return CompileOptions{
		Emit:             m.Emit,
		NoFinalCheck:     m.NoFinalCheck,
		RuntimeChecks:    m.RuntimeChecks,
		OverloadStrategy: m.OverloadStrategy,
	}
}
