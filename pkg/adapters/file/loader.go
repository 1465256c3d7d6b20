// Package file loads 7-tuple machine definitions from JSON or YAML documents.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a definition document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Extensions lists the file extensions recognized as definitions.
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported definition file %q: expected one of %s", path, strings.Join(Extensions, ", "))
}

// Parse decodes a definition document.
// The document is first read into a generic map and then mapped onto
// domain.Definition, so YAML scalars such as 0 and 1 become symbols and
// unknown keys are reported instead of silently ignored.
func Parse(data []byte, format Format) (domain.Definition, error) {
	var raw map[string]any

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.Definition{}, fmt.Errorf("failed to parse JSON definition: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.Definition{}, fmt.Errorf("failed to parse YAML definition: %w", err)
		}
	default:
		return domain.Definition{}, fmt.Errorf("unsupported format %q", format)
	}

	if raw == nil {
		return domain.Definition{}, fmt.Errorf("empty definition document")
	}
	return Decode(raw)
}

// Decode maps a generic document onto a Definition.
func Decode(raw map[string]any) (domain.Definition, error) {
	var def domain.Definition

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return domain.Definition{}, fmt.Errorf("invalid definition document: %w", err)
	}
	return def, nil
}

// Load reads and parses the definition at path. When the document has no
// name, the file name without extension is used.
func Load(path string) (domain.Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.Definition{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}

	def, err := Parse(data, format)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if def.Name == "" {
		def.Name = trimExtension(filepath.Base(path))
	}
	return def, nil
}

// Encode renders a definition in the given format.
func Encode(def domain.Definition, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(def, "", "  ")
	case FormatYAML:
		return yaml.Marshal(def)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func trimExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
