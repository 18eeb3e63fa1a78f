package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sundancer78/proxmox-suits/internal/client"
	"github.com/Sundancer78/proxmox-suits/internal/format"
	"github.com/Sundancer78/proxmox-suits/internal/metric"
)

// renderOverview renders the 7-stat overview bar for the active connection.
// Wide terminals (>= 80 cols): all 7 cards in a single horizontal row.
// Narrow terminals (< 80 cols): cards stacked in rows of 2 (4 rows: 2+2+2+1).
// Returns empty string if no snapshot is available yet.
func renderOverview(app *App) string {
	c := app.activeConn()
	if c == nil || c.current == nil {
		return ""
	}
	snap := c.current

	width := app.width
	if width <= 0 {
		width = 80
	}

	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 14) / 7
		if cardWidth < 8 {
			cardWidth = 8
		}
	}

	// Mini bar inner width: card width minus padding (1 char each side).
	barWidth := cardWidth - 4
	if barWidth < 4 {
		barWidth = 4
	}

	// Card 1: Version, green background while the host keeps answering.
	versionText := "?"
	if snap.Version != nil && snap.Version.Version != "" {
		versionText = snap.Version.Version
	}
	card1 := StyleOverviewCard.
		Background(colorGreen).
		Foreground(colorDark).
		Bold(true).
		Width(cardWidth).
		Render(versionText + "\nVersion")

	// Card 2: CPU% with mini bar, threshold-colored.
	card2 := percentCard("CPU", metricValue(metric.CPUPercent(snap.Status["cpu"])), cpuSeverity, cardWidth, barWidth)

	// Card 3: Memory% with mini bar and used/total detail, threshold-colored.
	memLabel := "Memory"
	if detail := formatMemoryDetail(snap.Status); detail != "" {
		memLabel = detail + "\nMemory"
	}
	card3 := percentCard(memLabel, metricValue(metric.MemoryPercent(snap.Status)), memSeverity, cardWidth, barWidth)

	// Card 4: Load 1m, blue foreground.
	loadText := "---"
	if v, ok := metric.Load1m(snap.Status["loadavg"]); ok {
		loadText = fmt.Sprintf("%.2f", v)
	}
	card4 := StyleOverviewCard.
		Foreground(colorBlue).
		Width(cardWidth).
		Render(loadText + "\nLoad 1m")

	// Card 5: Uptime in human-readable form.
	uptimeText := "---"
	if s, ok := metric.FormatUptimeDE(snap.Status["uptime"]); ok {
		uptimeText = s
	}
	card5 := StyleOverviewCard.
		Foreground(colorCyan).
		Width(cardWidth).
		Render(uptimeText + "\nUptime")

	var card6, card7 string
	if snap.Backend == client.BackendPBS {
		// Card 6: datastore count, purple foreground.
		card6 = StyleOverviewCard.
			Foreground(colorPurple).
			Width(cardWidth).
			Render(fmt.Sprintf("%d", len(snap.Datastores)) + "\nDatastores")

		// Card 7: failed tasks in the trailing 24h, threshold-colored.
		failed := metric.CountFailedTasks(snap.Tasks, time.Now())
		failedVal := fmt.Sprintf("%d", failed)
		sev := failedTasksSeverity(failed)
		if sev == severityCritical {
			failedVal += "!"
		}
		card7 = StyleOverviewCard.
			Foreground(severityFg(sev)).
			Width(cardWidth).
			Render(failedVal + "\nFailed 24h")
	} else {
		// Card 6: VMs running/total, purple foreground.
		card6 = StyleOverviewCard.
			Foreground(colorPurple).
			Width(cardWidth).
			Render(fmt.Sprintf("%d/%d", snap.Counts.VMsRunning, snap.Counts.VMsTotal) + "\nVMs")

		// Card 7: LXCs running/total, orange foreground.
		card7 = StyleOverviewCard.
			Foreground(colorOrange).
			Width(cardWidth).
			Render(fmt.Sprintf("%d/%d", snap.Counts.LXCsRunning, snap.Counts.LXCsTotal) + "\nLXCs")
	}

	if narrowMode {
		// Arrange 7 cards in rows of 2 (4 rows: 2+2+2+1).
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3, card7)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6, card7)
}

// metricValue collapses a (value, ok) metric result into a displayable pair.
type metricResult struct {
	value float64
	ok    bool
}

func metricValue(v float64, ok bool) metricResult {
	return metricResult{value: v, ok: ok}
}

// percentCard renders an overview card with a percentage, a mini bar, and a
// label, colored by the given severity function. Absent values render "---"
// with an empty bar.
func percentCard(label string, r metricResult, sevFn func(float64) severity, cardWidth, barWidth int) string {
	if !r.ok {
		return StyleOverviewCard.
			Foreground(colorGray).
			Width(cardWidth).
			Render("---\n" + renderMiniBar(0, barWidth) + "\n" + label)
	}

	sev := sevFn(r.value)
	val := fmt.Sprintf("%.1f%%", r.value)
	if sev == severityCritical {
		val += "!"
	}
	return StyleOverviewCard.
		Foreground(severityFg(sev)).
		Width(cardWidth).
		Render(val + "\n" + renderMiniBar(r.value, barWidth) + "\n" + label)
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatMemoryDetail renders "used/total" in GiB for the memory card detail
// line. Returns empty string when either side is unavailable.
func formatMemoryDetail(status client.NodeStatus) string {
	used, total, ok := metric.MemoryBytes(status)
	if !ok {
		return ""
	}
	usedGiB, uok := metric.BytesToGiB(used)
	totalGiB, tok := metric.BytesToGiB(total)
	if !uok || !tok {
		return ""
	}
	return format.FormatGiB(usedGiB) + "/" + format.FormatGiB(totalGiB)
}
