package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for the TUI.
type Theme struct {
	Name    string
	Bodies  lipgloss.Color
	Header  lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	Graph   lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:    "night",
		Bodies:  lipgloss.Color("#e0f0ff"),
		Header:  lipgloss.Color("86"),
		Accent:  lipgloss.Color("205"),
		Muted:   lipgloss.Color("240"),
		Warning: lipgloss.Color("#ffaa00"),
		Graph:   lipgloss.Color("49"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Bodies:  lipgloss.Color("#00ff00"),
		Header:  lipgloss.Color("#88ff88"),
		Accent:  lipgloss.Color("#ffff00"),
		Muted:   lipgloss.Color("#005500"),
		Warning: lipgloss.Color("#ff0000"),
		Graph:   lipgloss.Color("#00cc00"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Bodies:  lipgloss.Color("#feca57"),
		Header:  lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Warning: lipgloss.Color("#ff4757"),
		Graph:   lipgloss.Color("#5fd068"),
	}

	CurrentTheme = ThemeNight

	Themes = []Theme{
		ThemeNight,
		ThemeRetroGreen,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
