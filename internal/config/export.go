// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE renders configuration in the workerpack.cue file format.
	FormatCUE Format = "cue"
	// FormatTOML renders configuration as TOML.
	FormatTOML Format = "toml"
	// FormatYAML renders configuration as YAML.
	FormatYAML Format = "yaml"
)

// ErrInvalidFormat is returned when an export format is not recognized.
var ErrInvalidFormat = errors.New("invalid format")

type (
	// Format selects the encoding used by Export.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Formats returns every supported export format.
func Formats() []Format {
	return []Format{FormatCUE, FormatTOML, FormatYAML}
}

// Error implements the error interface for InvalidFormatError.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q (valid: cue, toml, yaml)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// IsValid returns whether the Format is one of the supported formats.
func (f Format) IsValid() (bool, []error) {
	if slices.Contains(Formats(), f) {
		return true, nil
	}
	return false, []error{&InvalidFormatError{Value: f}}
}

// Export encodes cfg in the requested format.
func Export(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatCUE:
		return []byte(GenerateCUE(cfg)), nil
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, &InvalidFormatError{Value: format}
	}
}
