package tui

import tea "github.com/charmbracelet/bubbletea"

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	// Navigation
	case "h", "left":
		m.cursor.X = max(m.cursor.X-1, 0)
	case "l", "right":
		m.cursor.X = min(m.cursor.X+1, max(m.width-1, 0))
	case "k", "up":
		m.cursor.Y = max(m.cursor.Y-1, 0)
	case "j", "down":
		m.cursor.Y = min(m.cursor.Y+1, max(m.mapRows()-1, 0))

	// Panning, a quarter of the map per key
	case "H", "shift+left":
		m.pan(-1, 0)
	case "L", "shift+right":
		m.pan(1, 0)
	case "K", "shift+up":
		m.pan(0, -1)
	case "J", "shift+down":
		m.pan(0, 1)
	case "0":
		m.page.ResetPan()
		m.rasterize()

	// Actions
	case "enter", " ":
		if id := m.regionAt(m.cursor); id != 0 {
			m.page.Click(id)
		}
		return m, nil
	case "g":
		m.page.ToggleGrouping()
		return m, nil
	case "c":
		m.page.Clear()
		return m, nil
	case "+", "=":
		m.page.Zoom(zoomStep)
		m.rasterize()
	case "-", "_":
		m.page.Zoom(1 / zoomStep)
		m.rasterize()
	default:
		return m, nil
	}

	m.hoverCursor()
	return m, nil
}

// pan moves the view by panFraction of the map area in direction dx, dy.
func (m *Model) pan(dx, dy int) {
	m.page.Pan(float64(dx*m.width)*panFraction, float64(dy*m.mapRows()*2)*panFraction)
	m.rasterize()
}
