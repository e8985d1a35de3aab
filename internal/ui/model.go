package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samvad-hq/neowatch/internal/app"
	"github.com/samvad-hq/neowatch/internal/approach"
	"github.com/samvad-hq/neowatch/internal/domain"
)

// Runner is the part of the pipeline the terminal UI drives.
type Runner interface {
	Cycle(ctx context.Context, trigger app.Trigger) (domain.Report, error)
	Threshold() (domain.Threshold, error)
	SetThresholdText(s string) (domain.Threshold, error)
}

type cycleDoneMsg struct {
	trigger app.Trigger
	report  domain.Report
	err     error
}

const startHint = "Press r to load data from NASA."

// Model is the interactive close-approach table.
type Model struct {
	ctx       context.Context
	runner    Runner
	now       func() time.Time
	state     app.TriggerState
	threshold domain.Threshold
	report    domain.Report
	notice    string
	editing   bool
	quitting  bool

	table   table.Model
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
}

// New builds the model. The persisted threshold is read once here for display;
// each cycle reads it again itself.
func New(ctx context.Context, runner Runner, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}

	cols := []table.Column{
		{Title: approach.Headers[0], Width: 24},
		{Title: approach.Headers[1], Width: 18},
		{Title: approach.Headers[2], Width: 14},
		{Title: approach.Headers[3], Width: 12},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows([]table.Row{{startHint, "", "", ""}}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	ti := textinput.New()
	ti.Prompt = "max AU: "
	ti.CharLimit = 16
	ti.Width = 16

	s := spinner.New()
	s.Spinner = spinner.Dot

	threshold, err := runner.Threshold()
	if err != nil {
		threshold = domain.DefaultThresholdAU
	}

	return Model{
		ctx:       ctx,
		runner:    runner,
		now:       now,
		state:     app.TriggerState{Status: "Ready: waiting for a trigger."},
		threshold: threshold,
		table:     t,
		input:     ti,
		spinner:   s,
		help:      help.New(),
	}
}

// Init waits for the first trigger; nothing is fetched on startup.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 3))
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.state.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case cycleDoneMsg:
		out := app.Settle(m.state, msg.trigger, msg.report, msg.err, m.now())
		m.state = out.State
		if out.Err != nil {
			m.notice = out.Notice
			return m, nil
		}
		m.report = msg.report
		// The user may have saved a new limit while the cycle ran.
		if th, err := m.runner.Threshold(); err == nil {
			m.threshold = th
		}
		m.table.SetRows(tableRows(msg.report.Rows))
		m.table.SetCursor(0)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.notice != "" {
		if key.Matches(msg, keys.Confirm, keys.Cancel) {
			m.notice = ""
		}
		return m, nil
	}

	if m.editing {
		switch {
		case key.Matches(msg, keys.Confirm):
			if saved, err := m.runner.SetThresholdText(m.input.Value()); err != nil {
				m.notice = "Could not save the threshold.\n\n" + err.Error()
			} else {
				m.threshold = saved
			}
			m.stopEditing()
			return m, nil
		case key.Matches(msg, keys.Cancel):
			m.stopEditing()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Refresh):
		return m.begin(app.Refresh)
	case key.Matches(msg, keys.Diagnostic):
		return m.begin(app.Diagnostic)
	case key.Matches(msg, keys.Edit):
		m.editing = true
		m.input.SetValue(formatAU(m.threshold))
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// begin is a no-op while a cycle is in flight.
func (m Model) begin(trigger app.Trigger) (tea.Model, tea.Cmd) {
	next, ok := app.Start(m.state, trigger, m.now())
	if !ok {
		return m, nil
	}
	m.state = next
	return m, tea.Batch(m.spinner.Tick, m.cycle(trigger))
}

func (m Model) cycle(trigger app.Trigger) tea.Cmd {
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		report, err := runner.Cycle(ctx, trigger)
		return cycleDoneMsg{trigger: trigger, report: report, err: err}
	}
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.Reset()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Near-Earth close approaches"))
	b.WriteString("\n")
	window := ""
	if m.report.WindowStart != "" {
		window = fmt.Sprintf("  %s .. %s", m.report.WindowStart, m.report.WindowEnd)
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("max %s AU%s", formatAU(m.threshold), window)))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")

	status := m.state.Status
	if m.state.Busy {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(noticeStyle.Render(m.notice + "\n\n" + mutedStyle.Render("enter/esc to dismiss")))
	}
	return b.String()
}

// detail describes the highlighted record.
func (m Model) detail() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.report.Records) {
		return ""
	}
	r := m.report.Records[i]
	line := mutedStyle.Render(r.JPLURL)
	if r.Hazardous {
		line = hazardStyle.Render("potentially hazardous") + "  " + line
	}
	return line
}

func tableRows(rows []domain.DisplayRow) []table.Row {
	if len(rows) == 0 {
		return []table.Row{{approach.Placeholder, "", "", ""}}
	}
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.Designation, r.ApproachTimestamp, r.DistanceKm, r.RelativeSpeedKmS}
	}
	return out
}

func formatAU(t domain.Threshold) string {
	return strconv.FormatFloat(float64(t), 'g', -1, 64)
}

// Run starts the full-screen program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, runner Runner) error {
	p := tea.NewProgram(New(ctx, runner, time.Now), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
