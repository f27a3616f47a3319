// Package tui is the interactive browse view over the jobs dataset: a list
// pane with filter cycling, a detail view with description and metadata, and
// on-demand generate/clear actions that write straight back to the dataset
// file.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JaYani55/aitinkerer-demo-101225/internal/batch"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/dataset"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/filter"
	"github.com/JaYani55/aitinkerer-demo-101225/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	jobSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedJobTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedJobSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	metaBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// metadataGeneratedMsg is sent when an async extraction completes.
type metadataGeneratedMsg struct {
	jobID    int
	metadata model.Metadata
	err      error
}

// savedMsg is sent after the dataset has been written back.
type savedMsg struct {
	err error
}

type spinnerTickMsg struct{}

type browseModel struct {
	ds        *dataset.Dataset
	store     *dataset.Store
	extractor batch.Extractor

	jobs   []*model.JobListing // filtered view over ds.Jobs
	filter filter.JobFilter

	view     viewState
	cursor   int
	offset   int
	width    int
	height   int
	ready    bool
	viewport viewport.Model

	generating    bool
	generatingID  int
	spinnerFrame  int
	statusMessage string
	statusIsError bool
}

// Run launches the browse TUI. Blocks until the user quits.
func Run(ds *dataset.Dataset, store *dataset.Store, extractor batch.Extractor) error {
	m := browseModel{
		ds:        ds,
		store:     store,
		extractor: extractor,
	}
	m.applyFilter()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *browseModel) applyFilter() {
	m.jobs = m.filter.Apply(m.ds.Jobs)
	if m.cursor >= len(m.jobs) {
		m.cursor = max(0, len(m.jobs)-1)
	}
	m.offset = 0
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(m.width-4, m.height-4)
		m.ready = true
		if m.view == viewDetail {
			m.viewport.SetContent(m.renderDetail())
		}
		return m, nil

	case metadataGeneratedMsg:
		m.generating = false
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("generation failed for job %d: %v", msg.jobID, msg.err)
			m.statusIsError = true
			if m.view == viewDetail {
				m.viewport.SetContent(m.renderDetail())
			}
			return m, nil
		}
		if job := m.ds.JobByID(msg.jobID); job != nil {
			job.CategorizedData = msg.metadata
		}
		m.statusMessage = fmt.Sprintf("metadata generated for job %d, saving...", msg.jobID)
		m.statusIsError = false
		m.applyFilter()
		if m.view == viewDetail {
			m.viewport.SetContent(m.renderDetail())
		}
		return m, m.save()

	case savedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("save failed: %v", msg.err)
			m.statusIsError = true
		} else {
			m.statusMessage = "dataset saved"
			m.statusIsError = false
		}
		return m, nil

	case spinnerTickMsg:
		if !m.generating {
			return m, nil
		}
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, m.tick()

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.scrollIntoView()
		}

	case "down", "j":
		if m.cursor < len(m.jobs)-1 {
			m.cursor++
			m.scrollIntoView()
		}

	case "m":
		// Cycle metadata status filter: all → with → without.
		m.filter.Status = (m.filter.Status + 1) % 3
		m.applyFilter()
		m.statusMessage = "filter: " + m.filter.Status.String()
		m.statusIsError = false

	case "a":
		m.filter.IncludeArchived = !m.filter.IncludeArchived
		m.applyFilter()
		if m.filter.IncludeArchived {
			m.statusMessage = "showing archived jobs"
		} else {
			m.statusMessage = "hiding archived jobs"
		}
		m.statusIsError = false

	case "enter":
		if len(m.jobs) > 0 {
			m.view = viewDetail
			if m.ready {
				m.viewport.SetContent(m.renderDetail())
				m.viewport.GotoTop()
			}
		}

	case "g":
		return m.startGeneration()
	}

	return m, nil
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		m.view = viewList
		return m, nil

	case "g":
		return m.startGeneration()

	case "c":
		job := m.selectedJob()
		if job == nil || !job.HasMetadata() {
			return m, nil
		}
		job.CategorizedData = nil
		m.statusMessage = fmt.Sprintf("metadata cleared for job %d, saving...", job.ID)
		m.statusIsError = false
		m.viewport.SetContent(m.renderDetail())
		return m, m.save()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m browseModel) startGeneration() (tea.Model, tea.Cmd) {
	if m.generating {
		return m, nil
	}
	job := m.selectedJob()
	if job == nil {
		return m, nil
	}

	m.generating = true
	m.generatingID = job.ID
	m.statusMessage = fmt.Sprintf("generating metadata for job %d...", job.ID)
	m.statusIsError = false

	extractor := m.extractor
	target := job
	generate := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		metadata, err := extractor.Extract(ctx, target)
		return metadataGeneratedMsg{jobID: target.ID, metadata: metadata, err: err}
	}
	return m, tea.Batch(generate, m.tick())
}

func (m browseModel) save() tea.Cmd {
	store, ds := m.store, m.ds
	return func() tea.Msg {
		return savedMsg{err: store.Save(ds)}
	}
}

func (m browseModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m *browseModel) selectedJob() *model.JobListing {
	if m.cursor < 0 || m.cursor >= len(m.jobs) {
		return nil
	}
	return m.jobs[m.cursor]
}

// scrollIntoView keeps the cursor inside the visible window of the list.
func (m *browseModel) scrollIntoView() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m browseModel) visibleRows() int {
	// Header, status bar and borders eat 6 lines.
	rows := (m.height - 6) / jobItemHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m browseModel) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.view == viewDetail {
		return m.viewDetailScreen()
	}
	return m.viewListScreen()
}

func (m browseModel) viewListScreen() string {
	var b strings.Builder

	withMeta := len(m.ds.WithMetadata())
	header := fmt.Sprintf("Jobs %d  filtered %d  with metadata %d  without %d",
		len(m.ds.Jobs), len(m.jobs), withMeta, len(m.ds.Jobs)-withMeta)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	visible := m.visibleRows()
	end := min(m.offset+visible, len(m.jobs))
	for i := m.offset; i < end; i++ {
		job := m.jobs[i]

		badge := "  "
		if job.HasMetadata() {
			badge = metaBadgeStyle.Render("✓ ")
		}
		title := fmt.Sprintf("%s%s", badge, truncate(job.JobTitle, m.width-8))
		subtitle := fmt.Sprintf("   #%d  %s  %s", job.ID, job.EmployerName(), job.Location)
		subtitle = truncate(subtitle, m.width-4)

		if i == m.cursor {
			b.WriteString(selectedJobTitleStyle.Render(title) + "\n")
			b.WriteString(selectedJobSubtitleStyle.Render(subtitle) + "\n")
		} else {
			b.WriteString(jobTitleStyle.Render(title) + "\n")
			b.WriteString(jobSubtitleStyle.Render(subtitle) + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.jobs) == 0 {
		b.WriteString(hintStyle.Render("  no jobs match the current filter") + "\n")
	}

	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(" ↑/↓ navigate  enter detail  g generate  m filter metadata  a archived  q quit"))
	return b.String()
}

func (m browseModel) viewDetailScreen() string {
	var b strings.Builder
	b.WriteString(borderStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(" ↑/↓ scroll  g generate  c clear metadata  esc back  q quit"))
	return b.String()
}

func (m browseModel) statusBar() string {
	msg := m.statusMessage
	if m.generating {
		msg = fmt.Sprintf("%s generating metadata for job %d...",
			spinnerFrames[m.spinnerFrame], m.generatingID)
	}
	if msg == "" {
		msg = fmt.Sprintf("filter: %s", m.filter.Status)
	}
	if m.statusIsError && !m.generating {
		return statusBarStyle.Render(errorStyle.Render(msg))
	}
	return statusBarStyle.Render(msg)
}

func (m browseModel) renderDetail() string {
	job := m.selectedJob()
	if job == nil {
		return "no job selected"
	}

	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(job.JobTitle))
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			value = "—"
		}
		b.WriteString(detailLabelStyle.Render(label) + value + "\n")
	}
	row("ID", fmt.Sprintf("%d", job.ID))
	row("Employer", job.EmployerName())
	row("Location", job.Location)
	row("Schedule", job.Schedule)
	row("Level", job.Level)
	row("Department", job.Department)
	if job.JobSource != nil {
		row("Source", job.JobSource.JobSource)
	}
	if job.Archived {
		row("Archived", "yes")
	}
	row("URL", job.URL)

	b.WriteString("\n" + dividerStyle.Render(strings.Repeat("─", max(10, m.width-8))) + "\n")
	b.WriteString(detailLabelStyle.Render("Metadata") + "\n")
	if job.HasMetadata() {
		pretty, err := json.MarshalIndent(job.CategorizedData, "", "  ")
		if err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("render error: %v", err)) + "\n")
		} else {
			b.WriteString(string(pretty) + "\n")
		}
	} else {
		b.WriteString(hintStyle.Render("not generated yet — press g") + "\n")
	}

	b.WriteString("\n" + dividerStyle.Render(strings.Repeat("─", max(10, m.width-8))) + "\n")
	b.WriteString(detailLabelStyle.Render("Description") + "\n")
	if job.Description != "" {
		b.WriteString(job.Description + "\n")
	} else {
		b.WriteString(hintStyle.Render("no description available") + "\n")
	}

	return b.String()
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
