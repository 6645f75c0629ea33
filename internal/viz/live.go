package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/vec"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameTime       = 1.0 / 60
	maxStepsPerTick = 2000

	cursorStep  = 10.0
	aimStep     = 5.0
	massStep    = 10.0
	vectorScale = 0.25

	minTimeFactor = 1.0 / 16
	maxTimeFactor = 16.0

	defaultCandidateMass = 10.0
	defaultPreview       = 10.0
)

type TickMsg time.Time

// Model steps a solver in real time and lets the user place new bodies.
type Model struct {
	solver     *gravity.Solver
	name       string
	dt         float64
	timeFactor float64
	t          float64

	running     bool
	showVectors bool
	showHelp    bool

	cursor vec.V2
	aim    vec.V2
	mass   float64
	pinned bool

	previewDuration float64
	preview         []vec.V2
	previewErr      error

	view          Viewport
	canvas        *Canvas
	energyHistory []float64
	collisions    int
	lastErr       error
}

// NewModel wraps a solver for live display. dt is the integration step;
// each frame advances 1/60 time units of simulation scaled by timeFactor.
func NewModel(s *gravity.Solver, name string, dt, timeFactor float64) Model {
	if dt <= 0 {
		dt = frameTime
	}
	if timeFactor <= 0 {
		timeFactor = 1
	}
	canvas := NewCanvas(width, height)
	m := Model{
		solver:          s,
		name:            name,
		dt:              dt,
		timeFactor:      timeFactor,
		running:         true,
		mass:            defaultCandidateMass,
		previewDuration: defaultPreview,
		view:            NewViewport(canvas.PixelWidth(), canvas.PixelHeight(), 300),
		canvas:          canvas,
		energyHistory:   make([]float64, 0, historyCapacity),
	}
	m.view.Fit(s.Bodies())
	m.refreshPreview()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.refreshPreview()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "up":
		m.cursor.Y += cursorStep * m.view.Scale
	case "down":
		m.cursor.Y -= cursorStep * m.view.Scale
	case "left":
		m.cursor.X -= cursorStep * m.view.Scale
	case "right":
		m.cursor.X += cursorStep * m.view.Scale
	case "w":
		m.aim.Y += aimStep
	case "s":
		m.aim.Y -= aimStep
	case "a":
		m.aim.X -= aimStep
	case "d":
		m.aim.X += aimStep
	case "+", "=":
		m.mass += massStep
	case "-", "_":
		if m.mass > massStep {
			m.mass -= massStep
		}
	case "c":
		m.pinned = !m.pinned
	case "enter":
		m.commit()
	case "u":
		m.solver.RemoveLast()
	case "backspace":
		m.solver.Clear()
		m.energyHistory = m.energyHistory[:0]
	case "v":
		m.showVectors = !m.showVectors
	case "<", ",":
		m.timeFactor = math.Max(minTimeFactor, m.timeFactor/2)
	case ">", ".":
		m.timeFactor = math.Min(maxTimeFactor, m.timeFactor*2)
	case "z":
		m.view.Zoom(1.25)
	case "x":
		m.view.Zoom(0.8)
	case "f":
		m.view.Fit(m.solver.Bodies())
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	m.refreshPreview()
	return m, nil
}

// step advances the solver by one frame of simulation time.
func (m *Model) step() {
	n := int(math.Ceil(frameTime / m.dt))
	if n > maxStepsPerTick {
		n = maxStepsPerTick
	}
	h := m.dt * m.timeFactor
	for i := 0; i < n; i++ {
		m.solver.Step(h)
		m.collisions += len(m.solver.LastCollisions())
	}
	m.t += float64(n) * h

	energy := m.solver.Energy()
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) commit() {
	if err := m.solver.AddBody(m.cursor, m.aim, m.pinned, m.mass); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
	m.aim = vec.Zero
}

// Candidate is the body that enter would add.
func (m Model) Candidate() gravity.Body {
	return gravity.Body{Position: m.cursor, Velocity: m.aim, Mass: m.mass, Pinned: m.pinned}
}

func (m *Model) refreshPreview() {
	path, err := m.solver.PredictTrajectory(m.Candidate(), m.previewDuration)
	m.preview, m.previewErr = path, err
}

func (m Model) Preview() []vec.V2       { return m.preview }
func (m Model) Solver() *gravity.Solver { return m.solver }
func (m Model) Running() bool           { return m.running }
func (m Model) TimeFactor() float64     { return m.timeFactor }
func (m Model) Time() float64           { return m.t }
func (m Model) ShowVectors() bool       { return m.showVectors }

// draw renders bodies, candidate, preview and markers onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()

	for _, b := range m.solver.Bodies() {
		if !b.IsFinite() {
			continue
		}
		x, y := m.view.ToCanvas(b.Position)
		r := m.view.Pixels(b.Radius())
		if b.Pinned {
			m.canvas.FillCircle(x, y, r)
		} else {
			m.canvas.DrawCircle(x, y, r)
		}
		if m.showVectors && !b.Pinned {
			m.drawVector(b.Position, b.Velocity)
			m.drawVector(b.Position, b.Acceleration.Div(b.Mass))
		}
	}

	for i, p := range m.preview {
		if i%2 == 0 {
			x, y := m.view.ToCanvas(p)
			m.canvas.Set(x, y)
		}
	}

	cx, cy := m.view.ToCanvas(m.cursor)
	m.canvas.DrawCircle(cx, cy, m.view.Pixels(math.Sqrt(m.mass)))
	m.drawVector(m.cursor, m.aim)

	if com, ok := m.solver.CenterOfMass(); ok {
		x, y := m.view.ToCanvas(com)
		m.canvas.DrawCross(x, y, 2)
	}
}

func (m *Model) drawVector(from, v vec.V2) {
	to := from.Add(v.Scale(vectorScale))
	if !to.IsFinite() {
		return
	}
	x0, y0 := m.view.ToCanvas(from)
	x1, y1 := m.view.ToCanvas(to)
	if absInt(x1-x0)+absInt(y1-y0) > 4*(m.canvas.PixelWidth()+m.canvas.PixelHeight()) {
		return
	}
	m.canvas.DrawLine(x0, y0, x1, y1)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle().Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(accentStyle().Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(warnStyle().Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle().Render(chart) + "\n\n")
	}

	s.WriteString(row("Time", fmt.Sprintf("%.2f", m.t)))
	s.WriteString(row("Speed", fmt.Sprintf("x%g", m.timeFactor)))
	s.WriteString(row("Bodies", fmt.Sprintf("%d", m.solver.Len())))
	s.WriteString(row("Mass", fmt.Sprintf("%.1f", m.solver.TotalMass())))
	if com, ok := m.solver.CenterOfMass(); ok {
		s.WriteString(row("COM", fmt.Sprintf("(%.1f, %.1f)", com.X, com.Y)))
	} else {
		s.WriteString(row("COM", "undefined"))
	}
	s.WriteString(row("Collisions", fmt.Sprintf("%d", m.collisions)))

	s.WriteString("\nCANDIDATE\n")
	s.WriteString(row("Position", fmt.Sprintf("(%.1f, %.1f)", m.cursor.X, m.cursor.Y)))
	s.WriteString(row("Velocity", fmt.Sprintf("(%.1f, %.1f)", m.aim.X, m.aim.Y)))
	mass := fmt.Sprintf("%.0f", m.mass)
	if m.pinned {
		mass += " pinned"
	}
	s.WriteString(row("Mass", mass))
	s.WriteString(row("Preview", fmt.Sprintf("%d steps", len(m.preview))))
	for _, err := range []error{m.previewErr, m.lastErr} {
		if err != nil {
			s.WriteString(warnStyle().Render(err.Error()) + "\n")
		}
	}

	s.WriteString(mutedStyle().Render("\n" + Separator(30) + "\nSP:Pause Q:Quit ?:Help\nEnter:Add U:Undo V:Vectors"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return helpBox.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

const helpText = `KEYBOARD SHORTCUTS

Arrows   Move candidate
W A S D  Aim candidate velocity
+ / -    Candidate mass ±10
C        Toggle candidate pinned
Enter    Add candidate
U        Remove last body
Bksp     Remove all bodies
V        Toggle vectors
Space    Pause/Resume
< / >    Time factor ÷2 / ×2
Z / X    Zoom in / out
F        Fit view
T        Cycle themes
Q        Quit`
