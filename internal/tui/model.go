// Package tui renders a live view of a swarm run: task progress, turn
// usage, and the most recent blackboard entries.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reedwhitmont/swarm/internal/orchestrator"
	"github.com/reedwhitmont/swarm/pkg/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC857"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#45B7D1"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#96E6A1"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	entryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
)

// maxVisibleEntries bounds the blackboard pane.
const maxVisibleEntries = 6

// EventMsg wraps an orchestrator event for the bubbletea loop.
type EventMsg orchestrator.Event

// DoneMsg tells the model the run finished and the program may quit.
type DoneMsg struct{}

// taskLine is one row in the task pane.
type taskLine struct {
	id     string
	role   string
	status models.TaskStatus
	detail string
}

// Model is the bubbletea model for a single run.
type Model struct {
	goal    string
	spin    spinner.Model
	order   []string
	tasks   map[string]*taskLine
	entries []*models.BlackboardEntry
	turns   int
	done    bool
	width   int
}

// NewModel creates a run view for the given goal.
func NewModel(goal string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle
	return Model{
		goal:  goal,
		spin:  s,
		tasks: make(map[string]*taskLine),
		width: 80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case DoneMsg:
		m.done = true
		return m, tea.Quit

	case EventMsg:
		m.apply(orchestrator.Event(msg))
		return m, nil
	}
	return m, nil
}

// apply folds one orchestrator event into the view state.
func (m *Model) apply(e orchestrator.Event) {
	switch e.Type {
	case orchestrator.EventTaskStarted:
		m.upsert(e.TaskID, e.Role, models.TaskStatusRunning, e.Message)
	case orchestrator.EventTaskCompleted:
		m.upsert(e.TaskID, e.Role, models.TaskStatusComplete, "")
		m.turns = e.Turns
	case orchestrator.EventTaskFailed:
		detail := e.Message
		if e.Err != nil {
			detail = e.Err.Error()
		}
		m.upsert(e.TaskID, e.Role, models.TaskStatusFailed, detail)
	case orchestrator.EventEntryPosted:
		if e.Entry != nil {
			m.entries = append(m.entries, e.Entry)
			if len(m.entries) > maxVisibleEntries {
				m.entries = m.entries[len(m.entries)-maxVisibleEntries:]
			}
		}
	case orchestrator.EventRunDone:
		m.turns = e.Turns
	}
}

func (m *Model) upsert(id, role string, status models.TaskStatus, detail string) {
	if id == "" {
		return
	}
	line, ok := m.tasks[id]
	if !ok {
		line = &taskLine{id: id}
		m.tasks[id] = line
		m.order = append(m.order, id)
	}
	if role != "" {
		line.role = role
	}
	line.status = status
	line.detail = detail
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("swarm") + dimStyle.Render("  "+truncate(m.goal, m.width-8)) + "\n\n")

	for _, id := range m.order {
		line := m.tasks[id]
		var marker, text string
		switch line.status {
		case models.TaskStatusRunning:
			marker = m.spin.View()
			text = runningStyle.Render(fmt.Sprintf("%s (%s)", line.id, line.role))
		case models.TaskStatusComplete:
			marker = doneStyle.Render("✓")
			text = fmt.Sprintf("%s (%s)", line.id, line.role)
		case models.TaskStatusFailed:
			marker = failStyle.Render("✗")
			text = failStyle.Render(fmt.Sprintf("%s (%s): %s", line.id, line.role, truncate(line.detail, 60)))
		default:
			marker = dimStyle.Render("·")
			text = dimStyle.Render(line.id)
		}
		fmt.Fprintf(&b, " %s %s\n", marker, text)
	}

	if len(m.entries) > 0 {
		b.WriteString("\n" + dimStyle.Render("blackboard") + "\n")
		for _, e := range m.entries {
			fmt.Fprintf(&b, " %s %s\n",
				entryStyle.Render(fmt.Sprintf("[%s] %s:", e.Type, e.Author)),
				truncate(e.Content, m.width-20))
		}
	}

	fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("turns used: %d  ·  press q to quit", m.turns)))
	return b.String()
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
