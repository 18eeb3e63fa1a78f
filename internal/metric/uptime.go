package metric

import (
	"fmt"
	"strings"
)

// FormatUptimeDE renders an uptime in seconds as a German human-readable
// string like "5 Tage 3 Std 12 Min". Zero-valued leading components are
// omitted; minutes are always shown when nothing larger is. Negative input
// is clamped to zero. Absent on non-numeric input.
func FormatUptimeDE(v any) (string, bool) {
	f, ok := toFloat(v)
	if !ok {
		return "", false
	}
	s := int64(f)
	if s < 0 {
		s = 0
	}

	days := s / 86400
	rem := s % 86400
	hours := rem / 3600
	minutes := rem % 3600 / 60

	var parts []string
	if days == 1 {
		parts = append(parts, "1 Tag")
	} else if days > 0 {
		parts = append(parts, fmt.Sprintf("%d Tage", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d Std", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d Min", minutes))
	}

	return strings.Join(parts, " "), true
}
