// ABOUTME: Structured output helpers shared by CLI commands
// ABOUTME: Renders results as indented JSON or YAML

package cmd

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// formatStructured renders v in the requested machine-readable format
func formatStructured(format string, v any) (string, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding JSON: %w", err)
		}
		return string(data), nil
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encoding YAML: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unsupported output format %q", format)
}
