package theme

import "sync"

// Mode is the active color scheme of a session
type Mode string

const (
	Dark  Mode = "dark"
	Light Mode = "light"
)

// Palette holds the colors the components draw with
type Palette struct {
	Bg      string `json:"bg"`
	Panel   string `json:"panel"`
	Text    string `json:"text"`
	Border  string `json:"border"`
	Accent  string `json:"accent"`
	Success string `json:"success"`
	Ghost   string `json:"ghost"`
}

// Palettes maps each mode to its colors.
var Palettes = map[Mode]Palette{
	Dark: {
		Bg:      "#0b1220",
		Panel:   "#0f172a",
		Text:    "#e8eefc",
		Border:  "#233253",
		Accent:  "#2563eb",
		Success: "#16a34a",
		Ghost:   "#2a3961",
	},
	Light: {
		Bg:      "#f7f8fc",
		Panel:   "#ffffff",
		Text:    "#1e1e2d",
		Border:  "#d0d4e1",
		Accent:  "#2563eb",
		Success: "#16a34a",
		Ghost:   "#d0d4e1",
	},
}

// Theme holds the current mode. The zero value is ready to use and starts dark.
type Theme struct {
	mu   sync.Mutex
	mode Mode
}

// New returns a theme in dark mode
func New() *Theme {
	return &Theme{mode: Dark}
}

// Mode returns the current mode
func (t *Theme) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == "" {
		return Dark
	}
	return t.mode
}

// Toggle flips between dark and light and returns the new mode
func (t *Theme) Toggle() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == Light {
		t.mode = Dark
	} else {
		t.mode = Light
	}
	return t.mode
}

// Palette returns the colors for the current mode
func (t *Theme) Palette() Palette {
	return Palettes[t.Mode()]
}

