// ABOUTME: Comparison view ranking candidate node types for a replica target
// ABOUTME: Renders a bubbles table with cost, node count, and per-candidate errors

package comparison

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/icons"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/styles"
)

// Comparison displays a ranked candidate list
type Comparison struct {
	result *models.CompareResult
	width  int
}

// New creates a new comparison view
func New(result *models.CompareResult, width int) *Comparison {
	return &Comparison{
		result: result,
		width:  width,
	}
}

var columns = []table.Column{
	{Title: "", Width: 2},
	{Title: "Instance Type", Width: 16},
	{Title: "Shape", Width: 16},
	{Title: "Tasks/Node", Width: 10},
	{Title: "Nodes", Width: 6},
	{Title: "Tasks", Width: 6},
	{Title: "$/hour", Width: 9},
	{Title: "Binding", Width: 9},
}

// View renders the comparison
func (c *Comparison) View() string {
	if c.result == nil || len(c.result.Candidates) == 0 {
		return "No comparison data"
	}

	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("Node Types for %d Replicas", c.result.TargetReplicas)))
	sb.WriteString("\n")

	s := table.DefaultStyles()
	s.Header = styles.TableHeader
	s.Cell = styles.TableCell
	s.Selected = lipgloss.NewStyle()

	// Static render: size the viewport to show every row
	rows := Rows(c.result.Candidates)
	headerHeight := lipgloss.Height(styles.TableHeader.Render("x"))
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithStyles(s),
		table.WithWidth(tableWidth()),
		table.WithHeight(len(rows)+headerHeight),
		table.WithFocused(false),
	)
	sb.WriteString(t.View())
	sb.WriteString("\n")

	if c.result.Recommended != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusOK.Render(fmt.Sprintf("%s Recommended: %s", icons.CheckOK, c.result.Recommended)))
		sb.WriteString("\n")
	}

	// Failures
	var failed []models.CandidateResult
	for _, cand := range c.result.Candidates {
		if cand.Error != "" {
			failed = append(failed, cand)
		}
	}
	if len(failed) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusWarning.Render("Not usable"))
		sb.WriteString("\n")
		for _, cand := range failed {
			sb.WriteString(fmt.Sprintf("  %s %s: %s\n", styles.StatusCritical.Render(icons.Critical.String()), cand.InstanceType, cand.Error))
		}
	}

	return lipgloss.NewStyle().Width(c.width).Render(sb.String())
}

func tableWidth() int {
	w := 0
	for _, col := range columns {
		w += col.Width + styles.TableCell.GetHorizontalFrameSize()
	}
	return w
}

// Rows converts ranked candidates into table rows
func Rows(candidates []models.CandidateResult) []table.Row {
	rows := make([]table.Row, 0, len(candidates))
	for _, cand := range candidates {
		marker := ""
		if cand.Recommended {
			marker = icons.CheckOK.String()
		} else if cand.Error != "" {
			marker = icons.Critical.String()
		}

		shape, perNode, binding := "-", "-", "-"
		if cand.Profile != nil {
			shape = fmt.Sprintf("%dc/%dMB", cand.Profile.VCPUCount, cand.Profile.MemoryMB)
		}
		if cand.Sizing != nil {
			perNode = fmt.Sprintf("%d", cand.Sizing.NodeTaskCapacity)
			binding = cand.Sizing.BindingConstraint
		}

		nodes, tasks := "-", "-"
		if cand.NodesRequired > 0 {
			nodes = fmt.Sprintf("%d", cand.NodesRequired)
			tasks = fmt.Sprintf("%d", cand.TotalTasks)
		}

		cost := "-"
		if cand.Priced {
			cost = fmt.Sprintf("%.4f", cand.HourlyCost)
		}

		rows = append(rows, table.Row{marker, cand.InstanceType, shape, perNode, nodes, tasks, cost, binding})
	}
	return rows
}
