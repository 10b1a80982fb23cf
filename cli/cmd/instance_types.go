// ABOUTME: Instance-types command for pypi-capacity CLI
// ABOUTME: Lists the node type catalog or resolves a single name

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/backend/services"
	"github.com/markalston/pypiserver-capacity/cli/internal/client"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/styles"
	"github.com/spf13/cobra"
)

var typesRemote bool

var instanceTypesCmd = &cobra.Command{
	Use:   "instance-types [name]",
	Short: "List node types or resolve one by name",
	Long: `Without a name, list the built-in node type table. With a name, resolve
it to vCPU, memory, and price.

With --remote the backend answers, which also consults its EC2 and vSphere
sources when they are configured.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		exitCode := runInstanceTypes(ctx, os.Stdout, name)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(instanceTypesCmd)
	instanceTypesCmd.Flags().BoolVar(&typesRemote, "remote", false, "Query the backend API instead of the built-in table")
}

// runInstanceTypes prints the catalog, or one entry when name is set, and returns exit code
func runInstanceTypes(ctx context.Context, w io.Writer, name string) int {
	list, err := fetchInstanceTypes(ctx, name)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if GetOutputFormat() == formatText {
		fmt.Fprintln(w, formatInstanceTypesHuman(list.InstanceTypes))
		return exitOK
	}

	var v any = list
	if name != "" {
		v = list.InstanceTypes[0]
	}
	out, err := formatStructured(GetOutputFormat(), v)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintln(w, out)
	return exitOK
}

func fetchInstanceTypes(ctx context.Context, name string) (*models.InstanceTypeList, error) {
	if typesRemote {
		c := client.New(GetAPIURL())
		if name == "" {
			return c.InstanceTypes(ctx)
		}
		it, err := c.InstanceType(ctx, name)
		if err != nil {
			return nil, err
		}
		return &models.InstanceTypeList{InstanceTypes: []models.InstanceType{*it}}, nil
	}

	catalog := services.NewCatalog(nil)
	if name == "" {
		return &models.InstanceTypeList{InstanceTypes: catalog.List(), Sources: catalog.Sources()}, nil
	}
	it, err := catalog.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return &models.InstanceTypeList{InstanceTypes: []models.InstanceType{it}, Sources: catalog.Sources()}, nil
}

// formatInstanceTypesHuman renders the entries as a bordered table
func formatInstanceTypesHuman(types []models.InstanceType) string {
	rows := make([][]string, 0, len(types))
	for _, it := range types {
		price := "-"
		if it.OnDemandPricePerHour > 0 {
			price = strconv.FormatFloat(it.OnDemandPricePerHour, 'f', 4, 64)
		}
		rows = append(rows, []string{
			it.Name,
			strconv.Itoa(it.VCPUCount),
			strconv.Itoa(it.MemoryMB),
			price,
			it.Source,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
		Headers("Instance Type", "vCPU", "Memory MB", "$/hour", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader.BorderBottom(false)
			}
			return styles.TableCell
		}).
		String()
}
