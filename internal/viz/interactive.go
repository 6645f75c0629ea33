package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gravsim/internal/config"
)

const (
	stateMenu = iota
	stateSim
)

// Picker lists the built-in scenarios and opens the chosen one live.
type Picker struct {
	state   int
	cursor  int
	presets []string
	live    Model
	err     error
}

func NewPicker() Picker {
	return Picker{
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.open()
	}
	return p, nil
}

func (p Picker) open() (tea.Model, tea.Cmd) {
	if len(p.presets) == 0 {
		return p, nil
	}
	sc := config.GetPreset(p.presets[p.cursor])
	s, err := sc.Build()
	if err != nil {
		p.err = err
		return p, nil
	}
	p.err = nil
	p.live = NewModel(s, sc.Name, sc.Dt, sc.TimeFactor)
	p.state = stateSim
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	var s strings.Builder
	s.WriteString(headerStyle().Render("GRAVSIM") + "\n")
	for i, name := range p.presets {
		sc := config.Presets[name]
		line := fmt.Sprintf("%-10s %d bodies, %s", name, len(sc.Bodies), sc.Collision)
		if i == p.cursor {
			s.WriteString(accentStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + mutedStyle().Render(line) + "\n")
		}
	}
	if p.err != nil {
		s.WriteString("\n" + warnStyle().Render(p.err.Error()) + "\n")
	}
	s.WriteString("\n" + mutedStyle().Render("↑↓:Select Enter:Open Esc:Back Q:Quit"))
	return s.String()
}

// RunPicker starts the preset picker in the alternate screen.
func RunPicker() error {
	_, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	return err
}

// RunLive runs a single model until the user quits.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
