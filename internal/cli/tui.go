package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/osumercury/badgemaker/pkg/pipeline"
)

// Progress styles
var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	barTextStyle   = lipgloss.NewStyle().Foreground(colorWhite)
)

const (
	barMinWidth = 10
	barMaxWidth = 50
)

// =============================================================================
// ProgressModel - Interactive batch progress
// =============================================================================

// progressMsg carries a progress snapshot into the bubbletea loop.
type progressMsg pipeline.Snapshot

// jobDoneMsg is delivered once the job has returned.
type jobDoneMsg struct {
	result *pipeline.Result
	err    error
}

// ProgressModel is the bubbletea model that follows a running batch.
// Pressing q, esc or ctrl+c cancels the batch; the model quits once the job
// has actually stopped.
type ProgressModel struct {
	Title    string
	Snapshot pipeline.Snapshot
	Result   *pipeline.Result
	Err      error
	Aborted  bool
	Width    int

	job *pipeline.Job
}

// NewProgressModel creates a model following job.
func NewProgressModel(title string, job *pipeline.Job) ProgressModel {
	return ProgressModel{
		Title:    title,
		Snapshot: job.Progress.Snapshot(),
		Width:    barMaxWidth + 20,
		job:      job,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	job := m.job
	return func() tea.Msg {
		res, err := job.Wait()
		return jobDoneMsg{result: res, err: err}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.Aborted {
				m.Aborted = true
				m.job.Cancel()
			}
		}
	case progressMsg:
		m.Snapshot = pipeline.Snapshot(msg)
	case jobDoneMsg:
		m.Result = msg.result
		m.Err = msg.err
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n\n")
	b.WriteString(m.bar())
	b.WriteString(" ")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("%3.0f%%", m.Snapshot.Percent)))
	b.WriteString("\n")
	b.WriteString(barTextStyle.Render(m.Snapshot.Text))
	b.WriteString("\n\n")
	if m.Aborted {
		b.WriteString(StyleWarning.Render("Cancelling..."))
	} else {
		b.WriteString(StyleDim.Render("q cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m ProgressModel) bar() string {
	w := m.Width - 20
	w = max(barMinWidth, min(w, barMaxWidth))
	filled := int(m.Snapshot.Percent / 100 * float64(w))
	filled = max(0, min(filled, w))
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", w-filled))
}

// runProgressTUI shows the progress of job until it finishes. Updates are
// forwarded from the job's Progress into the program.
func runProgressTUI(title string, job *pipeline.Job) (*pipeline.Result, error) {
	p := tea.NewProgram(NewProgressModel(title, job), tea.WithOutput(os.Stderr))
	job.Progress.Subscribe(func(s pipeline.Snapshot) {
		p.Send(progressMsg(s))
	})

	final, err := p.Run()
	if err != nil {
		job.Cancel()
		return job.Wait()
	}
	m := final.(ProgressModel)
	return m.Result, m.Err
}
