// ABOUTME: Health command for pypi-capacity CLI
// ABOUTME: Checks backend connectivity and catalog sources

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/cli/internal/client"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the capacity planning backend and list its catalog sources.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	url := GetAPIURL()
	c := client.New(url)

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if GetOutputFormat() == formatText {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
		return 0
	}

	out, err := formatStructured(GetOutputFormat(), healthOutput{Backend: url, HealthResponse: *resp})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintln(w, out)
	return 0
}

// healthOutput adds the queried URL to the backend's answer
type healthOutput struct {
	Backend               string `json:"backend" yaml:"backend"`
	models.HealthResponse `yaml:",inline"`
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *models.HealthResponse) string {
	return fmt.Sprintf(`Backend:   %s
Status:    %s
Catalog:   %s
Cache TTL: %ds`, url, resp.Status, strings.Join(resp.CatalogSources, ", "), resp.CacheTTL)
}
