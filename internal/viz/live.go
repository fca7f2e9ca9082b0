package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nssim/internal/experiment"
	"github.com/san-kum/nssim/internal/field"
	"github.com/san-kum/nssim/internal/metrics"
)

const (
	canvasWidth  = 32
	canvasHeight = 16
	barWidth     = 30
	levelStep    = 0.25
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Foreground(lipgloss.Color("213"))
	statsStyle = lipgloss.NewStyle().PaddingLeft(2)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// RecordMsg carries one recorded snapshot into the program.
type RecordMsg struct {
	Step int
	W    field.Field
	T    float64
}

// DoneMsg reports the end of the run.
type DoneMsg struct {
	Err error
}

// Model contains the latest snapshot and the diagnostics derived from it.
type Model struct {
	name      string
	records   int
	seen      int
	step      int
	t         float64
	w         field.Field
	sample    int
	level     float64
	canvas    *Canvas
	energy    *metrics.Energy
	enstrophy *metrics.EnstrophyMetric
	peak      *metrics.PeakVorticity
	cancel    context.CancelFunc
	done      bool
	err       error
}

// NewModel expects records snapshots of an n×n field. cancel, if non-nil,
// is called when the user quits.
func NewModel(name string, n, records int, cancel context.CancelFunc) (Model, error) {
	energy, err := metrics.NewEnergy(n)
	if err != nil {
		return Model{}, err
	}
	return Model{
		name:      name,
		records:   records,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		energy:    energy,
		enstrophy: metrics.NewEnstrophy(),
		peak:      metrics.NewPeakVorticity(),
		cancel:    cancel,
	}, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab":
			if m.w.Batch > 0 {
				m.sample = (m.sample + 1) % m.w.Batch
				m.canvas.Plot(m.w, m.sample, m.level)
			}
		case "+", "=":
			m.level += levelStep * m.scale()
			m.canvas.Plot(m.w, m.sample, m.level)
		case "-", "_":
			m.level -= levelStep * m.scale()
			m.canvas.Plot(m.w, m.sample, m.level)
		}
	case RecordMsg:
		m.seen++
		m.step, m.t, m.w = msg.Step, msg.T, msg.W
		m.energy.Observe(msg.W, msg.T)
		m.enstrophy.Observe(msg.W, msg.T)
		m.peak.Observe(msg.W, msg.T)
		if m.sample >= msg.W.Batch {
			m.sample = 0
		}
		m.canvas.Plot(m.w, m.sample, m.level)
	case DoneMsg:
		m.done, m.err = true, msg.Err
	}
	return m, nil
}

// scale is the contour step unit, the current peak vorticity.
func (m Model) scale() float64 {
	if p := m.peak.Value(); p > 0 {
		return p
	}
	return 1
}

func (m Model) progress() string {
	ratio := 0.0
	if m.records > 0 {
		ratio = float64(m.seen) / float64(m.records)
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * barWidth)
	return fmt.Sprintf("[%s%s] %3.0f%%", strings.Repeat("=", filled), strings.Repeat("-", barWidth-filled), ratio*100)
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(errStyle.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.done:
		s.WriteString(doneStyle.Render("DONE") + "\n\n")
	default:
		s.WriteString("RUNNING\n\n")
	}

	s.WriteString(m.progress() + "\n\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.step)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4f", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4e", m.energy.Value())) + "\n")
	s.WriteString(labelStyle.Render("Enstrophy") + valueStyle.Render(fmt.Sprintf("%.4e", m.enstrophy.Value())) + "\n")
	s.WriteString(labelStyle.Render("Peak |w|") + valueStyle.Render(fmt.Sprintf("%.4f", m.peak.Value())) + "\n")
	s.WriteString(labelStyle.Render("Sample") + valueStyle.Render(fmt.Sprintf("%d", m.sample)) + "\n")
	s.WriteString(labelStyle.Render("Level") + valueStyle.Render(fmt.Sprintf("%.3f", m.level)) + "\n")

	if hist, _ := m.energy.History(); len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(helpStyle.Render("Q:Quit  Tab:Sample  +/-:Level"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()))
}

// Feed forwards record points to a running program.
type Feed struct {
	p *tea.Program
}

func NewFeed(p *tea.Program) *Feed { return &Feed{p: p} }

func (f *Feed) OnRecord(step int, w field.Field, t float64) {
	f.p.Send(RecordMsg{Step: step, W: w, T: t})
}

// Run executes exp while showing the live view. Quitting the view cancels
// the run; the view stays open after the run ends until the user quits.
func Run(ctx context.Context, exp *experiment.Experiment) (*experiment.Run, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := exp.Config()
	m, err := NewModel(cfg.Name, cfg.Resolution, cfg.RecordSteps, cancel)
	if err != nil {
		return nil, err
	}

	p := tea.NewProgram(m)
	exp.AddObserver(NewFeed(p))

	var (
		run    *experiment.Run
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		run, runErr = exp.Run(ctx)
		p.Send(DoneMsg{Err: runErr})
	}()

	_, err = p.Run()
	cancel()
	<-done
	if err != nil {
		return run, err
	}
	return run, runErr
}
