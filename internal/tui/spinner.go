package tui

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerModel is a bubbletea model showing a busy message.
type SpinnerModel struct {
	frame   int
	message string
	done    bool
	err     error
}

type spinnerTickMsg time.Time

type spinnerDoneMsg struct{ err error }

func NewSpinner(message string) SpinnerModel {
	return SpinnerModel{
		message: message,
	}
}

func (m SpinnerModel) Init() tea.Cmd {
	return spinnerTick()
}

func spinnerTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinnerTickMsg:
		if !m.done {
			m.frame = (m.frame + 1) % len(spinnerFrames)
			return m, spinnerTick()
		}
	}

	return m, nil
}

func (m SpinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return lipgloss.NewStyle().Foreground(danger).Render("✗") + " " + m.message + ": " + m.err.Error() + "\n"
		}
		return lipgloss.NewStyle().Foreground(success).Render("✓") + " " + m.message + "\n"
	}

	spinner := lipgloss.NewStyle().Foreground(primary).Render(spinnerFrames[m.frame])
	return spinner + " " + m.message + "\n"
}

// Spinner runs a SpinnerModel while a busy indicator is held. On a
// non-terminal output it prints nothing.
type Spinner struct {
	message string
	out     io.Writer
	program *tea.Program
	exited  chan struct{}
}

// NewBusySpinner returns a spinner writing to out.
func NewBusySpinner(message string, out io.Writer) *Spinner {
	return &Spinner{message: message, out: out}
}

// Show starts or stops the spinner. It matches the busy indicator callback.
func (s *Spinner) Show(visible bool) {
	if visible {
		s.start()
		return
	}
	s.Stop(nil)
}

func (s *Spinner) start() {
	if s.program != nil || !isatty(s.out) {
		return
	}
	s.program = tea.NewProgram(NewSpinner(s.message), tea.WithOutput(s.out), tea.WithInput(nil))
	s.exited = make(chan struct{})
	go func() {
		defer close(s.exited)
		_, _ = s.program.Run()
	}()
}

// Stop ends the spinner, showing err if non-nil.
func (s *Spinner) Stop(err error) {
	if s.program == nil {
		return
	}
	s.program.Send(spinnerDoneMsg{err: err})
	<-s.exited
	s.program = nil
}

func isatty(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
