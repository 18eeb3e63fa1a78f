package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

// renderHeader renders the top header bar for the active connection.
//
// Layout:
//
//	left:   host title, e.g. "Proxmox VE (pve1)" (or "Connecting to <URL>..." on first poll)
//	center: colored "● ONLINE" indicator (or "● OFFLINE  <error>" when unreachable)
//	right:  "Last: HH:MM:SS  Poll: 30s  [1/2]" (or "Press r to retry" when offline)
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	c := app.activeConn()
	if c == nil {
		return StyleHeader.Width(width).Render("")
	}

	position := ""
	if len(app.conns) > 1 {
		position = fmt.Sprintf("  [%d/%d]", app.active+1, len(app.conns))
	}

	var left, center, right string

	if c.current == nil {
		// No successful snapshot yet.
		left = "Connecting to " + c.baseURL + "..."

		if c.lastErr != nil {
			center = StyleOffline.Render("● OFFLINE  " + truncateError(c.lastErr))
			right = StyleError.Render("Press r to retry") + position
		}
	} else {
		left = connTitle(c)

		if c.lastErr != nil {
			// Lost the host after a successful poll; data below is stale.
			center = StyleOffline.Render("● OFFLINE  " + truncateError(c.lastErr))
			right = StyleError.Render("Press r to retry") + position
		} else {
			center = StyleOnline.Render("● ONLINE")

			lastStr := "..."
			if !c.lastUpdated.IsZero() {
				lastStr = c.lastUpdated.Format("15:04:05")
			}
			right = StyleDim.Render(fmt.Sprintf("Last: %s  Poll: %s", lastStr, formatDuration(app.pollInterval))) + position
		}
	}

	// Build row: left + padding + center + padding + right, filling innerWidth.
	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// connTitle builds the header title from product name and display name.
func connTitle(c *conn) string {
	product := "Proxmox VE"
	if c.backend == client.BackendPBS {
		product = "Proxmox Backup Server"
	}
	if c.current != nil && c.current.DisplayName != "" {
		return product + " (" + c.current.DisplayName + ")"
	}
	return product + " (" + c.name + ")"
}

// truncateError shortens an error message for the header line.
func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > 40 {
		msg = msg[:40] + "..."
	}
	return msg
}

// formatDuration formats a poll interval as a compact string, e.g. "30s" or "2m".
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
