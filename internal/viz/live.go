package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/nadeemsk/sheetflow/internal/model"
	"github.com/nadeemsk/sheetflow/internal/ode"
)

const (
	chartWidth      = 70
	chartHeight     = 16
	historyCapacity = 4096
	stepsPerTick    = 3
)

type TickMsg time.Time

// profileView names a state column for display.
type profileView struct {
	name  string
	index int
}

var profileViews = []profileView{
	{"velocity F'(η)", model.IdxFPrime},
	{"cross-flow G(η)", model.IdxG},
	{"temperature θ(η)", model.IdxTheta},
}

// Model marches a similarity profile across the boundary layer at tick rate
// and renders the traced column alongside live diagnostics.
type Model struct {
	sys        ode.System
	integrator ode.Integrator
	cfg        ode.Config

	state   ode.State
	eta     float64
	steps   int
	running bool
	done    bool

	profile int
	etas    []float64
	history []ode.State

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	initialState  ode.State
}

// NewModel initializes the march at the wall with the given initial state.
func NewModel(sys ode.System, integ ode.Integrator, init ode.State, cfg ode.Config) Model {
	params := make(map[string]float64)
	if t, ok := sys.(ode.Configurable); ok {
		for k, v := range t.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initialParams[k] = v
	}
	sort.Strings(keys)

	m := Model{
		sys:           sys,
		integrator:    integ,
		cfg:           cfg,
		state:         init.Clone(),
		running:       true,
		etas:          make([]float64, 0, historyCapacity),
		history:       make([]ode.State, 0, historyCapacity),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		initialState:  init.Clone(),
	}
	m.record()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the march.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "p":
			m.profile = (m.profile + 1) % len(profileViews)
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.tuneParam(1.05)
		case "down", "j":
			m.tuneParam(0.95)
		}
	case TickMsg:
		if m.running && !m.done {
			m.march()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// march advances a few fixed steps per tick, clamping the final step so the
// trace ends exactly at the outer edge.
func (m *Model) march() {
	for i := 0; i < stepsPerTick && !m.done; i++ {
		h := m.cfg.Step
		last := false
		if m.eta+h >= m.cfg.EtaMax {
			h = m.cfg.EtaMax - m.eta
			last = true
		}
		if h <= 0 {
			m.finish()
			return
		}
		m.state = m.integrator.Step(m.sys, m.state, m.eta, h)
		m.eta += h
		m.steps++
		if last {
			m.eta = m.cfg.EtaMax
			m.finish()
		}
		m.record()
	}
}

func (m *Model) finish() {
	m.done = true
	m.running = false
}

func (m *Model) record() {
	m.etas = append(m.etas, m.eta)
	m.history = append(m.history, m.state.Clone())
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
		m.etas = m.etas[1:]
	}
}

// remarch restarts the spatial march from the wall, keeping parameters.
func (m *Model) remarch() {
	m.eta = 0
	m.steps = 0
	m.done = false
	m.running = true
	m.state = m.initialState.Clone()
	m.etas = m.etas[:0]
	m.history = m.history[:0]
	m.record()
}

// reset restores initial parameters and restarts the march.
func (m *Model) reset() {
	for k, v := range m.initialParams {
		m.params[k] = v
		if t, ok := m.sys.(ode.Configurable); ok {
			t.SetParam(k, v)
		}
	}
	m.remarch()
}

// tuneParam scales the selected parameter and restarts so the displayed
// profile reflects the new coefficients end to end.
func (m *Model) tuneParam(scale float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	m.params[key] *= scale
	if t, ok := m.sys.(ode.Configurable); ok {
		t.SetParam(key, m.params[key])
	}
	m.remarch()
}

// column extracts one state component across the recorded history.
func (m Model) column(idx int) []float64 {
	out := make([]float64, 0, len(m.history))
	for _, st := range m.history {
		if idx < len(st) {
			out = append(out, st[idx])
		}
	}
	return out
}

// View renders the TUI interface.
func (m Model) View() string {
	view := profileViews[m.profile]
	values := m.column(view.index)
	chart := "collecting samples..."
	if len(values) > 1 {
		chart = asciigraph.Plot(values,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption(view.name),
		)
	}
	chartView := chartStyle.Render(chart)

	status := "MARCHING"
	if m.done {
		status = "DONE"
	} else if !m.running {
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render("SHEET FLOW") + "\n")
	s.WriteString(status + "\n\n")
	s.WriteString(labelStyle.Render("η") + valueStyle.Render(fmt.Sprintf("%.3f / %.2f", m.eta, m.cfg.EtaMax)) + "\n")
	s.WriteString(progressBar(m.eta/m.cfg.EtaMax, 24) + "\n\n")
	if len(m.state) > model.IdxTheta {
		s.WriteString(labelStyle.Render("F'") + valueStyle.Render(fmt.Sprintf("%.4f", m.state[model.IdxFPrime])) + "\n")
		s.WriteString(labelStyle.Render("G") + valueStyle.Render(fmt.Sprintf("%.4f", m.state[model.IdxG])) + "\n")
		s.WriteString(labelStyle.Render("θ") + valueStyle.Render(fmt.Sprintf("%.4f", m.state[model.IdxTheta])) + "\n")
	}
	s.WriteString(labelStyle.Render("steps") + valueStyle.Render(fmt.Sprintf("%d", m.steps)) + "\n")

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) > 0 {
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-8s %.3f", k, m.params[k])
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	s.WriteString(helpStyle.Render("\nSP:Pause R:Reset P:Profile\nTAB:Select ↑↓:Tune Q:Quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, chartView, statsView)
}
