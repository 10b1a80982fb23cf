// ABOUTME: Root command for pypi-capacity CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL       string
	jsonOutput   bool
	outputFormat string
)

const defaultAPIURL = "http://localhost:8080"

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitConfigError = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "pypi-capacity",
	Short: "Capacity planner for pypiserver containers",
	Long: `pypi-capacity sizes package-index server containers for a node type.

It derives the gunicorn worker count, memory and CPU reservations, tasks per
node, and replica bounds, locally or through the planning service.

Environment Variables:
  PYPI_CAPACITY_API_URL  Backend API URL (default: http://localhost:8080)`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch GetOutputFormat() {
		case formatText, formatJSON, formatYAML:
			return nil
		}
		return fmt.Errorf("invalid --output %q: must be text, json, or yaml", outputFormat)
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides PYPI_CAPACITY_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text (same as --output json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format: text, json, or yaml")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("PYPI_CAPACITY_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return GetOutputFormat() == formatJSON
}

// GetOutputFormat resolves --json and --output into one format
func GetOutputFormat() string {
	if jsonOutput {
		return formatJSON
	}
	if outputFormat == "" {
		return formatText
	}
	return outputFormat
}
