// Package tui renders the prefecture map in a terminal. It drives the same
// page state as the browser: the terminal size is the viewport, the cursor
// hovers and enter clicks.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/page"
	"github.com/joeblew999/plat-japanmap/internal/projection"
	"github.com/joeblew999/plat-japanmap/internal/widget"
)

// chromeLines is the header, legend and footer.
const chromeLines = 3

// zoomStep is the factor applied by + and -.
const zoomStep = 1.5

// panFraction is how much of the map area one pan key moves.
const panFraction = 0.25

// Position is a cell in the map area.
type Position struct {
	X int
	Y int
}

// Model is the main TUI model.
type Model struct {
	page *page.Page
	data *geometry.Dataset

	width  int
	height int
	cursor Position

	// grid holds the prefecture id under each pixel; a cell is two pixels
	// tall. Zero is sea.
	grid [][]int

	styles *styleCache
}

// New creates a model over p. data is the dataset p was built from and may
// be nil.
func New(p *page.Page, data *geometry.Dataset) Model {
	return Model{
		page:   p,
		data:   data,
		styles: newStyleCache(),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.page.Resize(float64(m.width), float64(m.mapRows()*2))
		m.cursor = Position{X: m.width / 2, Y: m.mapRows() / 2}
		m.rasterize()
		m.hoverCursor()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) mapRows() int {
	return max(m.height-chromeLines, 0)
}

// rasterize rebuilds grid for the current frame.
func (m *Model) rasterize() {
	m.grid = nil
	v := m.page.View()
	if !v.Renderable || m.data == nil {
		return
	}
	m.grid = rasterize(m.data, v.Frame)
}

func rasterize(data *geometry.Dataset, frame widget.Frame) [][]int {
	proj := projection.Mercator{
		Scale:     frame.Scale,
		Translate: [2]float64{float64(frame.Width) / 2, float64(frame.Height) / 2},
		Rotate:    projection.Rotation,
	}

	grid := make([][]int, frame.Height)
	for y := range grid {
		row := make([]int, frame.Width)
		for x := range row {
			// undo the zoom and pan, then the projection
			px, py := frame.ScreenToFrame(float64(x)+0.5, float64(y)+0.5)
			if r, ok := data.Locate(proj.Invert(orb.Point{px, py})); ok {
				row[x] = r.ID
			}
		}
		grid[y] = row
	}
	return grid
}

// regionAt returns the prefecture under the top pixel of a cell.
func (m Model) regionAt(p Position) int {
	y := p.Y * 2
	if y < 0 || y >= len(m.grid) || p.X < 0 || p.X >= len(m.grid[y]) {
		return 0
	}
	return m.grid[y][p.X]
}

func (m Model) hoverCursor() {
	if id := m.regionAt(m.cursor); id != 0 {
		m.page.Hover(id)
		return
	}
	m.page.Leave()
}

type styleCache struct {
	cells map[[2]string]lipgloss.Style
}

func newStyleCache() *styleCache {
	return &styleCache{cells: map[[2]string]lipgloss.Style{}}
}

// cell returns the style for a half-block with fg on top and bg below.
func (c *styleCache) cell(fg, bg string) lipgloss.Style {
	key := [2]string{fg, bg}
	if s, ok := c.cells[key]; ok {
		return s
	}
	s := lipgloss.NewStyle()
	if fg != "" {
		s = s.Foreground(lipgloss.Color(fg))
	}
	if bg != "" {
		s = s.Background(lipgloss.Color(bg))
	}
	c.cells[key] = s
	return s
}
