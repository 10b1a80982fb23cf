// ABOUTME: Plan dashboard rendering one node type's sizing result
// ABOUTME: Shows node shape, container reservations, packing, and replica bounds

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/icons"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/styles"
)

// Dashboard displays a planning result
type Dashboard struct {
	plan  *models.PlanResponse
	width int
}

// New creates a new dashboard for a plan
func New(plan *models.PlanResponse, width int) *Dashboard {
	return &Dashboard{
		plan:  plan,
		width: width,
	}
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.plan == nil {
		return styles.Panel.Render("No plan data")
	}

	info := d.plan.CapacityInfo
	s := d.plan.Sizing

	var sb strings.Builder

	name := info.InstanceType
	if name == "" {
		name = "custom node"
	}
	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Capacity Plan: %s", icons.Server, name)))
	sb.WriteString("\n")

	// Node shape
	sb.WriteString(row("Node", fmt.Sprintf("%d vCPU / %d MB", info.InstanceVCPU, info.InstanceRAMMB)))
	sb.WriteString(row("Reserved", fmt.Sprintf("%d MB system + %d MB page cache", info.SystemOverheadMB, info.PageCacheFloorMB)))
	sb.WriteString(row("Available", fmt.Sprintf("%d MB / %d CPU units", s.AvailableMemoryMB, s.AvailableCPUUnits)))
	sb.WriteString("\n")

	// Container sizing
	sb.WriteString(styles.Subtitle.Render("Container"))
	sb.WriteString("\n")
	sb.WriteString(row("Workers", fmt.Sprintf("%d", s.WorkerCount)))
	sb.WriteString(row("Memory", fmt.Sprintf("%d MB reserved, %d MB limit", s.ContainerMemoryReservationMB, s.ContainerMemoryMB)))
	sb.WriteString(row("CPU", fmt.Sprintf("%d units (%.2f vCPU)", s.ContainerCPUUnits, info.ContainerVCPU)))
	sb.WriteString("\n")

	// Packing
	sb.WriteString(styles.Subtitle.Render("Packing"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s %s  %s\n",
		icons.Memory, styles.PackingBar(MemoryPacking(s), 20),
		fmt.Sprintf("%.1f%% memory (%d tasks fit)", MemoryPacking(s), s.NodeTaskCapacityByMemory)))
	sb.WriteString(fmt.Sprintf("%s %s  %s\n",
		icons.CPU, styles.PackingBar(CPUPacking(s), 20),
		fmt.Sprintf("%.1f%% cpu (%d tasks fit)", CPUPacking(s), s.NodeTaskCapacityByCPU)))
	sb.WriteString(row("Tasks/node", fmt.Sprintf("%d, bound by %s", s.NodeTaskCapacity, bindingStyle(s.BindingConstraint).Render(info.BindingLabel()))))
	sb.WriteString("\n")

	// Scaling bounds
	sb.WriteString(styles.Subtitle.Render("Scaling"))
	sb.WriteString("\n")
	nodeMax := "default"
	if s.NodeMax > 0 {
		nodeMax = fmt.Sprintf("%d", s.NodeMax)
	}
	sb.WriteString(row("Nodes", fmt.Sprintf("%d min, %s max", s.NodeMin, nodeMax)))
	replicas := fmt.Sprintf("%d-%d", s.ReplicaMin, s.ReplicaMax)
	if s.ReplicaMin != s.AutoReplicaMin {
		replicas += styles.StatusWarning.Render(fmt.Sprintf(" (derived min %d)", s.AutoReplicaMin))
	}
	sb.WriteString(row("Replicas", replicas))

	return lipgloss.NewStyle().Width(d.width).Render(sb.String())
}

// MemoryPacking is the share of available node memory reserved by a full node
func MemoryPacking(s models.DerivedSizing) float64 {
	if s.AvailableMemoryMB <= 0 {
		return 0
	}
	return float64(s.NodeTaskCapacity*s.ContainerMemoryReservationMB) / float64(s.AvailableMemoryMB) * 100
}

// CPUPacking is the share of available node CPU reserved by a full node
func CPUPacking(s models.DerivedSizing) float64 {
	if s.AvailableCPUUnits <= 0 {
		return 0
	}
	return float64(s.NodeTaskCapacity*s.ContainerCPUUnits) / float64(s.AvailableCPUUnits) * 100
}

func row(key, value string) string {
	return fmt.Sprintf("  %s %s\n", styles.KeyStyle.Render(fmt.Sprintf("%-11s", key+":")), value)
}

func bindingStyle(binding string) lipgloss.Style {
	if binding == models.BindingBalanced {
		return styles.StatusOK
	}
	return styles.StatusWarning
}
