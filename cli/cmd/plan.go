// ABOUTME: Plan command for pypi-capacity CLI
// ABOUTME: Sizes containers for one node type locally or through the backend

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
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/dashboard"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/wizard"
	"github.com/spf13/cobra"
)

const defaultSubnetCount = 2

var (
	planInstanceType string
	planVCPU         int
	planMemoryMB     int
	planSubnets      int
	planFile         string
	planInteractive  bool
	planRemote       bool
	planOverrides    overrideFlags
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Size containers for a node type",
	Long: `Derive worker count, reservations, tasks per node, and replica bounds
for one node type.

The node is named with --instance-type or described with --vcpu and
--memory-mb. Overrides come from flags or a YAML file (--file); flags win.

Exit codes:
  0 - Plan computed
  1 - Error (connectivity, unknown instance type, unreadable file)
  2 - Configuration error (invalid profile, override, or bounds)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var req *models.PlanRequest
		var err error
		if planInteractive {
			req, err = wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), services.NewCatalog(nil).List(), defaultSubnetCount)
		} else {
			req, err = buildPlanRequest(cmd.Flags().Changed)
		}
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(exitError)
		}

		exitCode := runPlan(ctx, os.Stdout, req)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planInstanceType, "instance-type", "", "Catalog instance type, e.g. t3.small")
	planCmd.Flags().IntVar(&planVCPU, "vcpu", 0, "vCPUs per node (custom shape)")
	planCmd.Flags().IntVar(&planMemoryMB, "memory-mb", 0, "Memory per node in MB (custom shape)")
	planCmd.Flags().IntVar(&planSubnets, "subnets", defaultSubnetCount, "Subnets the node pool spans")
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "YAML plan request (instance_type, instance, overrides, subnet_count)")
	planCmd.Flags().BoolVarP(&planInteractive, "interactive", "i", false, "Answer prompts instead of passing flags")
	planCmd.Flags().BoolVar(&planRemote, "remote", false, "Plan through the backend API instead of locally")
	planOverrides.register(planCmd)
}

// buildPlanRequest merges the request file with explicitly set flags
func buildPlanRequest(changed changedFunc) (*models.PlanRequest, error) {
	req := &models.PlanRequest{}
	if planFile != "" {
		if err := loadYAMLFile(planFile, req); err != nil {
			return nil, err
		}
	}

	if changed("instance-type") {
		req.InstanceType = planInstanceType
	}
	if changed("vcpu") || changed("memory-mb") {
		inst := models.InstanceProfile{}
		if req.Instance != nil {
			inst = *req.Instance
		}
		if changed("vcpu") {
			inst.VCPUCount = planVCPU
		}
		if changed("memory-mb") {
			inst.MemoryMB = planMemoryMB
		}
		req.Instance = &inst
	}
	if changed("subnets") || req.SubnetCount == 0 {
		req.SubnetCount = planSubnets
	}
	planOverrides.apply(changed, &req.Overrides)

	if req.InstanceType == "" && req.Instance == nil {
		return nil, errors.New("one of --instance-type, --vcpu/--memory-mb, --file, or --interactive is required")
	}
	return req, nil
}

// runPlan computes the plan and returns exit code
func runPlan(ctx context.Context, w io.Writer, req *models.PlanRequest) int {
	var (
		resp *models.PlanResponse
		err  error
	)
	if planRemote {
		resp, err = client.New(GetAPIURL()).Plan(ctx, req)
	} else {
		resp, err = planLocally(ctx, req)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		if isConfigError(err) {
			return exitConfigError
		}
		return exitError
	}

	if GetOutputFormat() == formatText {
		fmt.Fprintln(w, formatPlanHuman(resp))
		return exitOK
	}
	out, err := formatStructured(GetOutputFormat(), resp)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintln(w, out)
	return exitOK
}

// planLocally runs the planner against the built-in instance type table
func planLocally(ctx context.Context, req *models.PlanRequest) (*models.PlanResponse, error) {
	profile, err := services.ResolveProfile(ctx, services.NewCatalog(nil), *req)
	if err != nil {
		return nil, err
	}

	sizing, err := services.NewPlanner().Plan(profile, req.Overrides, req.SubnetCount)
	if err != nil {
		return nil, err
	}

	resp := services.BuildPlanResponse(profile, sizing)
	return &resp, nil
}

func isConfigError(err error) bool {
	if _, ok := models.AsConfigError(err); ok {
		return true
	}
	if apiErr, ok := client.AsAPIError(err); ok {
		return apiErr.IsConfigError()
	}
	return false
}

// formatPlanHuman formats a plan for human readability
func formatPlanHuman(resp *models.PlanResponse) string {
	return dashboard.New(resp, 100).View()
}
