package tui

import "github.com/charmbracelet/lipgloss"

// severity represents the alert level for a metric value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// cpuSeverity returns Warning when CPU > 80%, Critical when > 90%.
func cpuSeverity(pct float64) severity {
	switch {
	case pct > 90:
		return severityCritical
	case pct > 80:
		return severityWarning
	default:
		return severityNormal
	}
}

// memSeverity returns Warning when memory > 75%, Critical when > 85%.
func memSeverity(pct float64) severity {
	switch {
	case pct > 85:
		return severityCritical
	case pct > 75:
		return severityWarning
	default:
		return severityNormal
	}
}

// datastoreSeverity returns Warning when datastore usage > 80%, Critical when > 90%.
func datastoreSeverity(pct float64) severity {
	switch {
	case pct > 90:
		return severityCritical
	case pct > 80:
		return severityWarning
	default:
		return severityNormal
	}
}

// failedTasksSeverity returns Warning for any recent task failure,
// Critical when more than 5 failed within the window.
func failedTasksSeverity(n int) severity {
	switch {
	case n > 5:
		return severityCritical
	case n > 0:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// severityFg maps a severity level to a foreground color for overview cards.
// Normal values stay white rather than unstyled so cards keep their contrast
// against the dark card background.
func severityFg(s severity) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return colorWhite
	}
}
