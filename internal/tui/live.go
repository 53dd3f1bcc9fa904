package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fermsim/internal/bioreactor"
	"github.com/san-kum/fermsim/internal/sim"
)

const (
	chartWidth  = 70
	chartHeight = 12
	maxPoints   = 200
	frameEvery  = 50 * time.Millisecond
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type tickMsg time.Time

// Live streams a running simulation into a terminal chart of one
// selected output column.
type Live struct {
	reactor       *bioreactor.Model
	dt            float64
	stepsPerFrame int
	totalSteps    int
	stepsDone     int

	field  int
	series []float64
	err    error
	done   bool
}

func NewLive(reactor *bioreactor.Model, dt, duration float64, field int) *Live {
	total := int(duration / dt)
	perFrame := total / 200
	if perFrame < 1 {
		perFrame = 1
	}
	return &Live{
		reactor:       reactor,
		dt:            dt,
		stepsPerFrame: perFrame,
		totalSteps:    total,
		field:         field,
		series:        []float64{reactor.Outputs()[field]},
	}
}

func (m *Live) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		if m.done || m.err != nil {
			return m, nil
		}
		for i := 0; i < m.stepsPerFrame && m.stepsDone < m.totalSteps; i++ {
			if err := m.reactor.Step(m.dt); err != nil {
				m.err = err
				return m, nil
			}
			m.stepsDone++
		}
		m.series = append(m.series, m.reactor.Outputs()[m.field])
		if len(m.series) > maxPoints {
			m.series = m.series[len(m.series)-maxPoints:]
		}
		if m.stepsDone >= m.totalSteps {
			m.done = true
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) View() string {
	var b strings.Builder

	label := m.reactor.OutputNames()[m.field]
	b.WriteString(titleStyle.Render(fmt.Sprintf("fermsim live: %s", label)))
	b.WriteString("\n\n")

	b.WriteString(asciigraph.Plot(m.series,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(fmt.Sprintf("%s vs time", label)),
	))
	b.WriteString("\n\n")

	x := m.reactor.State()
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"t=%.2f  Ng=%.3f  Nx=%.3f  Nfa=%.3f  T=%.1fK  step %d/%d",
		m.reactor.Time(), x[sim.Glucose], x[sim.Biomass], x[sim.Fumarate],
		x[sim.Temp], m.stepsDone, m.totalSteps,
	)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(warnStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	} else if m.done {
		b.WriteString(statusStyle.Render("done"))
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

// Run blocks until the simulation finishes or the user quits.
func Run(reactor *bioreactor.Model, dt, duration float64, field int) error {
	p := tea.NewProgram(NewLive(reactor, dt, duration, field))
	_, err := p.Run()
	return err
}
