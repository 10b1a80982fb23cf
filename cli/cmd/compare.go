// ABOUTME: Compare command for pypi-capacity CLI
// ABOUTME: Ranks candidate node types by the cost of serving a replica target

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/backend/services"
	"github.com/markalston/pypiserver-capacity/cli/internal/client"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/comparison"
	"github.com/spf13/cobra"
)

var (
	compareCandidates []string
	compareTarget     int
	compareSubnets    int
	compareFile       string
	compareRemote     bool
	compareOverrides  overrideFlags
)

var compareCmd = &cobra.Command{
	Use:   "compare [instance-type...]",
	Short: "Rank node types for a replica target",
	Long: `Plan every candidate node type with the same overrides and rank them by
hourly cost of the nodes needed to run the target replica count.

Candidates that cannot be resolved or planned are listed last with the reason.

Exit codes:
  0 - At least one candidate can serve the target
  1 - Error, or no candidate can serve the target`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		req, err := buildCompareRequest(args, cmd.Flags().Changed)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(exitError)
		}

		exitCode := runCompare(ctx, os.Stdout, req)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareCandidates, "candidates", nil, "Candidate instance types (comma separated, or as arguments)")
	compareCmd.Flags().IntVar(&compareTarget, "target", 0, "Replica count the node pool must hold")
	compareCmd.Flags().IntVar(&compareSubnets, "subnets", defaultSubnetCount, "Subnets the node pool spans")
	compareCmd.Flags().StringVarP(&compareFile, "file", "f", "", "YAML compare request (candidates, target_replicas, overrides, subnet_count)")
	compareCmd.Flags().BoolVar(&compareRemote, "remote", false, "Compare through the backend API, which may resolve more instance types")
	compareOverrides.register(compareCmd)
}

// buildCompareRequest merges the request file, arguments, and flags
func buildCompareRequest(args []string, changed changedFunc) (*models.CompareRequest, error) {
	req := &models.CompareRequest{}
	if compareFile != "" {
		if err := loadYAMLFile(compareFile, req); err != nil {
			return nil, err
		}
	}

	if changed("candidates") {
		req.Candidates = compareCandidates
	}
	req.Candidates = append(req.Candidates, args...)
	if changed("target") {
		req.TargetReplicas = compareTarget
	}
	if changed("subnets") || req.SubnetCount == 0 {
		req.SubnetCount = compareSubnets
	}
	compareOverrides.apply(changed, &req.Overrides)

	if len(req.Candidates) == 0 {
		return nil, errors.New("at least one candidate instance type is required")
	}
	if req.TargetReplicas <= 0 {
		return nil, errors.New("--target must be greater than 0")
	}
	return req, nil
}

// runCompare evaluates the candidates and returns exit code
func runCompare(ctx context.Context, w io.Writer, req *models.CompareRequest) int {
	var (
		result *models.CompareResult
		err    error
	)
	if compareRemote {
		result, err = client.New(GetAPIURL()).Compare(ctx, req)
	} else {
		result, err = compareLocally(ctx, req)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	if GetOutputFormat() == formatText {
		fmt.Fprintln(w, formatCompareHuman(result))
	} else {
		out, err := formatStructured(GetOutputFormat(), result)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		fmt.Fprintln(w, out)
	}

	if result.Recommended == "" {
		return exitError
	}
	return exitOK
}

// compareLocally ranks candidates from the built-in instance type table
func compareLocally(ctx context.Context, req *models.CompareRequest) (*models.CompareResult, error) {
	c := services.NewComparator(services.NewCatalog(nil), services.NewPlanner(), services.DefaultCompareConcurrency)
	result, err := c.Compare(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// formatCompareHuman renders the ranked table
func formatCompareHuman(result *models.CompareResult) string {
	return comparison.New(result, 120).View()
}
