package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/storage"
)

const (
	logPanelHeight = 12
	minTableHeight = 5
)

type model struct {
	styles   styles
	store    storage.Store
	interval time.Duration
	limit    int

	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	loading  bool

	jobs        []*core.Job
	selected    string
	lastRefresh time.Time
	err         error
}

func newModel(store storage.Store, theme ThemeName, interval time.Duration, limit int) *model {
	st := GetTheme(theme)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "JOB", Width: 10},
			{Title: "USER", Width: 14},
			{Title: "STATUS", Width: 11},
			{Title: "ITEMS", Width: 5},
			{Title: "AGE", Width: 8},
			{Title: "RESULT", Width: 48},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(st.table),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = st.accent

	return &model{
		styles:   st,
		store:    store,
		interval: interval,
		limit:    limit,
		table:    t,
		viewport: viewport.New(100, logPanelHeight),
		spinner:  sp,
		loading:  true,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(loadJobsCmd(m.store, m.limit), tickCmd(m.interval), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, tea.Batch(loadJobsCmd(m.store, m.limit), m.spinner.Tick)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = max(msg.Width-6, 20)
		m.table.SetHeight(max(msg.Height-logPanelHeight-10, minTableHeight))

	case tickMsg:
		return m, tea.Batch(loadJobsCmd(m.store, m.limit), tickCmd(m.interval))

	case jobsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.jobs = msg.jobs
		m.lastRefresh = msg.at
		m.table.SetRows(m.rows(msg.at))
		if len(m.jobs) > 0 {
			cursor := 0
			for i, job := range m.jobs {
				if job.ID == m.selected {
					cursor = i
					break
				}
			}
			m.table.SetCursor(cursor)
		}
		if job := m.selectedJob(); job != nil {
			m.selected = job.ID
			return m, loadLogsCmd(m.store, job.ID)
		}
		m.selected = ""
		m.viewport.SetContent(m.styles.inactive.Render("No cart jobs yet."))
		return m, nil

	case logsLoadedMsg:
		if msg.jobID != m.selected {
			return m, nil
		}
		if msg.err != nil {
			m.viewport.SetContent(m.styles.error.Render("Could not load log: " + msg.err.Error()))
			return m, nil
		}
		atBottom := m.viewport.AtBottom()
		m.viewport.SetContent(m.renderLogs(msg.logs))
		if atBottom {
			m.viewport.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	if job := m.selectedJob(); job != nil && job.ID != m.selected {
		m.selected = job.ID
		m.viewport.SetContent(m.styles.inactive.Render("Loading log..."))
		cmds = append(cmds, loadLogsCmd(m.store, job.ID))
	}
	return m, tea.Batch(cmds...)
}

func (m *model) selectedJob() *core.Job {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.jobs) {
		return nil
	}
	return m.jobs[i]
}

func (m *model) rows(now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(m.jobs))
	for _, job := range m.jobs {
		result := job.ShareURL
		if job.Status == core.StatusFailed {
			result = job.ErrorMessage
		}
		rows = append(rows, table.Row{
			shortID(job.ID),
			job.UserID,
			string(job.Status),
			fmt.Sprintf("%d", len(job.Items)),
			age(now.Sub(job.CreatedAt)),
			result,
		})
	}
	return rows
}

func (m *model) renderLogs(logs []*core.LogEntry) string {
	if len(logs) == 0 {
		return m.styles.inactive.Render("No log entries yet.")
	}
	var b strings.Builder
	for _, l := range logs {
		b.WriteString(m.styles.inactive.Render(l.Timestamp.Local().Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(m.styles.level(l.Level, l.Message))
		b.WriteString("\n")
	}
	return b.String()
}

// summary counts jobs per status in the current snapshot.
func (m *model) summary() string {
	counts := map[core.Status]int{}
	for _, job := range m.jobs {
		counts[job.Status]++
	}
	parts := make([]string, 0, 5)
	for _, st := range []core.Status{core.StatusPending, core.StatusProcessing, core.StatusCompleted, core.StatusFailed, core.StatusCancelled} {
		parts = append(parts, fmt.Sprintf("%s %d", m.styles.status(st), counts[st]))
	}
	return strings.Join(parts, "  ")
}

func (m *model) View() string {
	header := m.styles.header.Render("CARTWATCH  ·  cart job monitor")

	status := m.summary()
	if m.err != nil {
		status = m.styles.error.Render("⚠ " + m.err.Error())
	}

	title := "Log"
	if job := m.selectedJob(); job != nil {
		title = fmt.Sprintf("Log · %s · %s", job.ID, m.styles.status(job.Status))
	}

	refresh := "never"
	if !m.lastRefresh.IsZero() {
		refresh = m.lastRefresh.Format("15:04:05")
	}
	loading := ""
	if m.loading {
		loading = " " + m.spinner.View()
	}
	footer := m.styles.footer.Render(fmt.Sprintf("↑/↓ select · pgup/pgdn scroll log · r refresh · q quit · refreshed %s", refresh)) + loading

	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		status,
		"",
		m.table.View(),
		"",
		m.styles.accent.Render(title),
		m.styles.panel.Render(m.viewport.View()),
		footer,
	))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
