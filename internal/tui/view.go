package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joeblew999/plat-japanmap/internal/page"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed"))
	tooltipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#333333")).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true).Bold(true)
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")).Italic(true)
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	v := m.page.View()

	var b strings.Builder
	b.WriteString(m.renderHeader(v))
	b.WriteByte('\n')
	if !v.Available {
		b.WriteString(emptyStyle.Render("Geometry unavailable: no prefecture dataset could be loaded."))
		b.WriteString(strings.Repeat("\n", max(m.mapRows(), 1)))
	} else {
		b.WriteString(m.renderMap(v))
		b.WriteByte('\n')
	}
	b.WriteString(m.renderLegend(v))
	b.WriteByte('\n')
	b.WriteString(m.renderFooter(v))
	return b.String()
}

func (m Model) renderHeader(v page.View) string {
	header := titleStyle.Render("Japan prefectures")
	if v.Hovered != nil {
		header += "  " + tooltipStyle.Render(fmt.Sprintf("%s (%s)", v.Hovered.NameJa, v.Hovered.Name))
	}
	return header
}

// fills maps each prefecture to the fill it shows right now.
func fills(v page.View) map[int]string {
	out := make(map[int]string, len(v.Frame.Shapes))
	for _, s := range v.Frame.Shapes {
		fill := s.Style.Default.Fill
		if v.Hovered != nil && v.Hovered.ID == s.Properties.ID {
			fill = s.Style.Hover.Fill
		}
		out[s.Properties.ID] = fill
	}
	return out
}

func (m Model) renderMap(v page.View) string {
	colors := fills(v)
	lines := make([]string, m.mapRows())
	for y := range lines {
		var (
			line    strings.Builder
			run     strings.Builder
			runFg   string
			runBg   string
			flushed = true
		)
		flush := func() {
			if !flushed {
				line.WriteString(m.styles.cell(runFg, runBg).Render(run.String()))
				run.Reset()
				flushed = true
			}
		}

		for x := 0; x < m.width; x++ {
			if (Position{X: x, Y: y}) == m.cursor {
				flush()
				line.WriteString(cursorStyle.Render("+"))
				continue
			}
			glyph, fg, bg := m.cell(colors, x, y)
			if flushed || fg != runFg || bg != runBg {
				flush()
				runFg, runBg = fg, bg
				flushed = false
			}
			run.WriteString(glyph)
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// cell picks a half-block glyph and colors for the two pixels of a cell.
func (m Model) cell(colors map[int]string, x, y int) (glyph, fg, bg string) {
	top, bottom := m.pixel(x, y*2), m.pixel(x, y*2+1)
	topFill, bottomFill := colors[top], colors[bottom]
	switch {
	case top == 0 && bottom == 0:
		return " ", "", ""
	case top != 0 && bottom != 0 && topFill == bottomFill:
		return "█", topFill, ""
	case top != 0 && bottom != 0:
		return "▀", topFill, bottomFill
	case top != 0:
		return "▀", topFill, ""
	default:
		return "▄", bottomFill, ""
	}
}

func (m Model) pixel(x, y int) int {
	if y < 0 || y >= len(m.grid) || x < 0 || x >= len(m.grid[y]) {
		return 0
	}
	return m.grid[y][x]
}

func (m Model) renderLegend(v page.View) string {
	items := make([]string, 0, len(v.Legend))
	for _, item := range v.Legend {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(item.Color)).Render("■")
		items = append(items, fmt.Sprintf("%s %s %d", swatch, item.Label, item.Count))
	}
	return strings.Join(items, "  ")
}

func (m Model) renderFooter(v page.View) string {
	regions := "Regions: OFF"
	if v.Grouped {
		regions = activeStyle.Render("Regions: ON")
	}
	parts := []string{regions}
	if v.Renderable {
		parts = append(parts, fmt.Sprintf("Zoom %.2gx", v.Frame.Zoom))
	}
	if n := v.SelectedCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("c Clear (%d)", n))
	}
	parts = append(parts, footerStyle.Render("arrows move · HJKL pan · enter select · g regions · +/- zoom · q quit"))
	return strings.Join(parts, "  ")
}
