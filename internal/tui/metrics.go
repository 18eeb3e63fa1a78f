package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sundancer78/proxmox-suits/internal/format"
	"github.com/Sundancer78/proxmox-suits/internal/metric"
	"github.com/Sundancer78/proxmox-suits/internal/model"
)

// renderMetricCard renders a single metric card with title, value, and sparkline.
//
// Layout (3 rows inside a rounded border):
//
//	╭──────────────────╮
//	│ Title            │   ← titleStyle (dim; yellow/red when a threshold is exceeded)
//	│ 42.5%            │   ← bold, metric color
//	│ ▁▂▃▅▇█▇▅▃▂       │   ← colored sparkline
//	╰──────────────────╯
func renderMetricCard(title, value string, sparkValues []float64, cardWidth int, color lipgloss.Color, titleStyle lipgloss.Style) string {
	// Minimum of 8 avoids zero/negative Width() args.
	const minCardWidth = 8
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	// Inner width = card width minus border (2) and padding (2).
	// lipgloss Width() includes padding in its measurement, so available content
	// width = Width - padding = (cardWidth-4) - 2 = cardWidth-6.
	innerWidth := cardWidth - 6
	if innerWidth < 1 {
		innerWidth = 1
	}

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	titleLine := titleStyle.Render(title)
	valueLine := valueStyle.Render(value)
	sparkLine := RenderSparkline(sparkValues, innerWidth, color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleLine,
		valueLine,
		sparkLine,
	))
}

// renderMetricsRow renders 4 trend cards (CPU, Memory, Load 1m, Running
// Tasks) with a "Host Trends" section label. The sparklines draw from the
// active connection's poll history.
// Wide terminals (>= 80 cols): 1x4 horizontal row.
// Narrow terminals (< 80 cols): 2x2 grid.
// Returns empty string when no data is available.
func renderMetricsRow(app *App) string {
	c := app.activeConn()
	if c == nil || c.current == nil {
		return ""
	}
	snap := c.current
	hist := c.history

	cpuVal, cpuOK := metric.CPUPercent(snap.Status["cpu"])
	cpuText, cpuTitle := percentCell(cpuVal, cpuOK, cpuSeverity)
	memVal, memOK := metric.MemoryPercent(snap.Status)
	memText, memTitle := percentCell(memVal, memOK, memSeverity)

	loadText := "---"
	if v, ok := metric.Load1m(snap.Status["loadavg"]); ok {
		loadText = fmt.Sprintf("%.2f", v)
	}

	tasksText := fmt.Sprintf("%d", metric.CountRunningTasks(snap.TasksRunning))

	if app.width > 0 && app.width < 80 {
		// 2x2 grid layout for narrow terminals.
		// Each card renders at (cardWidth-2) chars wide (lipgloss Width includes
		// padding, border adds 2). For 2 cards to fill app.width:
		// 2*(cardWidth-2)=app.width → cardWidth=(app.width+4)/2. Return empty when
		// the terminal is too narrow for the minimum card size rather than overflow.
		cardWidth := (app.width + 4) / 2
		if cardWidth < 8 {
			return ""
		}
		narrowLabel := StyleDim.MaxWidth(app.width).Render("Host Trends")
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			renderMetricCard("CPU", cpuText, histValues(hist, "cpuPercent"), cardWidth, colorGreen, cpuTitle),
			renderMetricCard("Memory", memText, histValues(hist, "memoryPercent"), cardWidth, colorCyan, memTitle),
		)
		bottom := lipgloss.JoinHorizontal(lipgloss.Top,
			renderMetricCard("Load 1m", loadText, histValues(hist, "load1m"), cardWidth, colorYellow, StyleDim),
			renderMetricCard("Running Tasks", tasksText, histValues(hist, "runningTasks"), cardWidth, colorPurple, StyleDim),
		)
		return lipgloss.JoinVertical(lipgloss.Left, narrowLabel, top, bottom)
	}

	label := StyleDim.Render("Host Trends")

	// 1x4 horizontal row for wide terminals.
	cardWidth := (app.width + 8) / 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	cards := []string{
		renderMetricCard("CPU", cpuText, histValues(hist, "cpuPercent"), cardWidth, colorGreen, cpuTitle),
		renderMetricCard("Memory", memText, histValues(hist, "memoryPercent"), cardWidth, colorCyan, memTitle),
		renderMetricCard("Load 1m", loadText, histValues(hist, "load1m"), cardWidth, colorYellow, StyleDim),
		renderMetricCard("Running Tasks", tasksText, histValues(hist, "runningTasks"), cardWidth, colorPurple, StyleDim),
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	return lipgloss.JoinVertical(lipgloss.Left, label, row)
}

// percentCell formats a percent metric and picks the title style for its
// severity. Absent values render "---" with the default dim title.
func percentCell(v float64, ok bool, sevFn func(float64) severity) (string, lipgloss.Style) {
	if !ok {
		return "---", StyleDim
	}
	sev := sevFn(v)
	if sev == severityNormal {
		return format.FormatPercent(v), StyleDim
	}
	return format.FormatPercent(v), severityToStyle(sev)
}

// histValues reads a history series, tolerating a nil history on the very
// first render.
func histValues(h *model.History, field string) []float64 {
	if h == nil {
		return nil
	}
	return h.Values(field)
}
