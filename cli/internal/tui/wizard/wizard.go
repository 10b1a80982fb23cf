// ABOUTME: Interactive plan wizard as a bubbletea model
// ABOUTME: Uses huh forms with a progress indicator to build a plan request

package wizard

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/icons"
	"github.com/markalston/pypiserver-capacity/cli/internal/tui/styles"
)

// ErrCancelled is returned when the user leaves the wizard early
var ErrCancelled = errors.New("wizard cancelled")

// CustomShape is the select value for a node shape typed in by hand
const CustomShape = "custom"

// Auto is the select value for "let the planner derive it"
const Auto = "auto"

// Step names for progress indicator
var stepNames = []string{"Node Type", "Node Shape", "Container"}

// Wizard collects a plan request one step at a time
type Wizard struct {
	types     []models.InstanceType
	form      *huh.Form
	step      int
	done      bool
	cancelled bool

	// Form field values (strings for huh)
	instanceType string
	subnets      string
	vcpu         string
	memoryMB     string
	workers      string
	containerMB  string
	replicaMax   string
}

// createTheme builds a huh theme from the shared report palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = styles.Title
	t.Group.Description = styles.Subtitle

	t.Focused.Base = t.Focused.Base.BorderForeground(styles.Primary)
	t.Focused.Title = styles.KeyStyle
	t.Focused.Description = lipgloss.NewStyle().Foreground(styles.Muted)
	t.Focused.ErrorIndicator = styles.StatusCritical.SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(styles.Bad)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(styles.Accent).SetString("> ")
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(styles.Accent)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(styles.Muted)
	t.Focused.FocusedButton = lipgloss.NewStyle().Background(styles.Primary).Padding(0, 2).MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(styles.Muted).Padding(0, 2).MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = lipgloss.NewStyle().Foreground(styles.Muted)
	t.Blurred.SelectSelector = lipgloss.NewStyle().SetString("  ")

	return t
}

// Worker counts offered in addition to auto
var workerOptions = []huh.Option[string]{
	huh.NewOption("auto (from memory)", Auto),
	huh.NewOption("1", "1"),
	huh.NewOption("2", "2"),
	huh.NewOption("4", "4"),
	huh.NewOption("6", "6"),
	huh.NewOption("8", "8"),
	huh.NewOption("12", "12"),
	huh.NewOption("16", "16"),
}

// Container memory limits
var containerMemoryOptions = []huh.Option[string]{
	huh.NewOption("256 MB", "256"),
	huh.NewOption("512 MB (default)", "512"),
	huh.NewOption("768 MB", "768"),
	huh.NewOption("1024 MB", "1024"),
	huh.NewOption("2048 MB", "2048"),
}

// New creates a wizard offering the given instance types
func New(types []models.InstanceType, defaultSubnets int) *Wizard {
	if defaultSubnets <= 0 {
		defaultSubnets = 2
	}

	w := &Wizard{
		types:        types,
		step:         1,
		instanceType: CustomShape,
		subnets:      strconv.Itoa(defaultSubnets),
		vcpu:         "2",
		memoryMB:     "4096",
		workers:      Auto,
		containerMB:  "512",
	}
	if len(types) > 0 {
		w.instanceType = types[0].Name
	}

	w.form = w.createStep1Form()
	return w
}

func (w *Wizard) instanceOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(w.types)+1)
	for _, t := range w.types {
		label := fmt.Sprintf("%-12s %2d vCPU %6d MB", t.Name, t.VCPUCount, t.MemoryMB)
		if t.OnDemandPricePerHour > 0 {
			label += fmt.Sprintf("  $%.4f/h", t.OnDemandPricePerHour)
		}
		opts = append(opts, huh.NewOption(label, t.Name))
	}
	return append(opts, huh.NewOption("Custom shape...", CustomShape))
}

func (w *Wizard) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Instance type").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(w.instanceOptions()...).
				Height(10).
				Value(&w.instanceType),
			huh.NewInput().
				Title("Subnets").
				Description("One node per subnet is the minimum pool size").
				CharLimit(3).
				Value(&w.subnets).
				Validate(validatePositiveInt),
		).Title("Step 1: Node Type").
			Description("Pick the node type the containers are packed onto"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("vCPUs per node").
				Placeholder("e.g., 2").
				CharLimit(4).
				Value(&w.vcpu).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Memory per node (MB)").
				Placeholder("e.g., 4096").
				CharLimit(7).
				Value(&w.memoryMB).
				Validate(validatePositiveInt),
		).Title("Step 2: Node Shape").
			Description("Describe a node shape that is not in the catalog"),
	).WithTheme(createTheme())
}

func (w *Wizard) createStep3Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Container memory limit").
				Options(containerMemoryOptions...).
				Value(&w.containerMB),
			huh.NewSelect[string]().
				Title("Workers per container").
				Options(workerOptions...).
				Value(&w.workers),
			huh.NewInput().
				Title("Maximum replicas").
				Description("Leave empty to allow twice the minimum").
				CharLimit(5).
				Value(&w.replicaMax).
				Validate(validateOptionalPositiveInt),
		).Title("Step 3: Container").
			Description("Override container sizing or keep the derived values"),
	).WithTheme(createTheme())
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			w.cancelled = true
			return w, tea.Quit
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	switch w.form.State {
	case huh.StateCompleted:
		return w.advanceStep()
	case huh.StateAborted:
		w.cancelled = true
		return w, tea.Quit
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	switch w.step {
	case 1:
		if w.instanceType == CustomShape {
			w.step = 2
			w.form = w.createStep2Form()
		} else {
			w.step = 3
			w.form = w.createStep3Form()
		}
		return w, w.form.Init()

	case 2:
		w.step = 3
		w.form = w.createStep3Form()
		return w, w.form.Init()

	case 3:
		w.done = true
		return w, tea.Quit
	}

	return w, nil
}

// View implements tea.Model
func (w *Wizard) View() string {
	if w.done || w.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(w.form.View())
	sb.WriteString(styles.Help.Render("esc to cancel"))
	return sb.String()
}

// renderProgress renders the step progress line
func (w *Wizard) renderProgress() string {
	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum == 2 && w.step > 2 && w.instanceType != CustomShape:
			// Skipped step
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("-")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted).Strikethrough(true)
		case stepNum < w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Good).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	title := styles.KeyStyle.Render(fmt.Sprintf("%s Capacity Plan", icons.Wizard))
	return title + "  " + strings.Join(steps, "    ")
}

// Request returns the plan request described by the collected answers
func (w *Wizard) Request() (*models.PlanRequest, error) {
	req := &models.PlanRequest{}

	subnets, err := atoi(w.subnets)
	if err != nil {
		return nil, fmt.Errorf("subnets: %w", err)
	}
	req.SubnetCount = subnets

	if w.instanceType == CustomShape {
		vcpu, err := atoi(w.vcpu)
		if err != nil {
			return nil, fmt.Errorf("vcpu: %w", err)
		}
		memory, err := atoi(w.memoryMB)
		if err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
		req.Instance = &models.InstanceProfile{VCPUCount: vcpu, MemoryMB: memory}
	} else {
		req.InstanceType = w.instanceType
	}

	// The default limit is left for the planner to derive
	if w.containerMB != "" && w.containerMB != "512" {
		v, err := strconv.Atoi(w.containerMB)
		if err != nil {
			return nil, fmt.Errorf("container memory: %w", err)
		}
		req.Overrides.ContainerMemoryMB = models.IntPtr(v)
	}
	if w.workers != Auto {
		v, err := strconv.Atoi(w.workers)
		if err != nil {
			return nil, fmt.Errorf("workers: %w", err)
		}
		req.Overrides.WorkerCount = models.IntPtr(v)
	}
	if strings.TrimSpace(w.replicaMax) != "" {
		v, err := atoi(w.replicaMax)
		if err != nil {
			return nil, fmt.Errorf("replica max: %w", err)
		}
		req.Overrides.ReplicaMax = models.IntPtr(v)
	}

	return req, nil
}

// Run drives the wizard on the given terminal streams
func Run(in io.Reader, out io.Writer, types []models.InstanceType, defaultSubnets int) (*models.PlanRequest, error) {
	w := New(types, defaultSubnets)

	p := tea.NewProgram(w, tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("running wizard: %w", err)
	}
	if w.cancelled || !w.done {
		return nil, ErrCancelled
	}
	return w.Request()
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func validatePositiveInt(s string) error {
	v, err := atoi(s)
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateOptionalPositiveInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validatePositiveInt(s)
}
