// Package metric projects raw snapshot fields into display-ready sensor
// values. All functions are pure and total: malformed input yields an absent
// result (ok == false), never a panic or error.
package metric

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

const gib = 1024 * 1024 * 1024 // IEC GiB (base 1024)

// toFloat converts the value shapes encoding/json produces (plus the numeric
// strings some Proxmox endpoints emit) to a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// roundTo rounds f to the given number of decimal places.
func roundTo(f float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(f*p) / p
}

// BytesToGiB converts a byte count to GiB with 1 decimal place.
// Absent on non-numeric input.
func BytesToGiB(v any) (float64, bool) {
	return BytesToGiBPrec(v, 1)
}

// BytesToGiBPrec converts a byte count to GiB with the given precision.
func BytesToGiBPrec(v any, precision int) (float64, bool) {
	b, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return roundTo(b/gib, precision), true
}

// CPUPercent normalizes a CPU load value to a percentage with 1 decimal
// place. Proxmox usually reports CPU as a 0–1 fraction; values above 1.0 are
// assumed to already be percentages.
func CPUPercent(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	if f <= 1.0 {
		return roundTo(f*100.0, 1), true
	}
	return roundTo(f, 1), true
}

// Percent computes used/total as a percentage with 2 decimal places.
// Absent when either value is non-numeric or total <= 0.
func Percent(used, total any) (float64, bool) {
	u, ok := toFloat(used)
	if !ok {
		return 0, false
	}
	t, ok := toFloat(total)
	if !ok || t <= 0 {
		return 0, false
	}
	return roundTo(u/t*100.0, 2), true
}

// MemoryPercent computes memory usage from a node status payload's nested
// memory.used/memory.total byte counts.
func MemoryPercent(status client.NodeStatus) (float64, bool) {
	used, total, ok := MemoryBytes(status)
	if !ok {
		return 0, false
	}
	return Percent(used, total)
}

// MemoryBytes extracts the raw memory.used and memory.total values from a
// node status payload.
func MemoryBytes(status client.NodeStatus) (used, total any, ok bool) {
	mem, ok := status["memory"].(map[string]any)
	if !ok {
		return nil, nil, false
	}
	return mem["used"], mem["total"], true
}

// Load1m extracts the 1-minute load average with 2 decimal places. PVE
// reports loadavg as a sequence (of numeric strings), some PBS builds as a
// mapping keyed "0"/"1"/"2".
func Load1m(v any) (float64, bool) {
	switch la := v.(type) {
	case []any:
		if len(la) == 0 {
			return 0, false
		}
		f, ok := toFloat(la[0])
		if !ok {
			return 0, false
		}
		return roundTo(f, 2), true
	case map[string]any:
		f, ok := toFloat(la["0"])
		if !ok {
			return 0, false
		}
		return roundTo(f, 2), true
	default:
		return 0, false
	}
}

// Uptime extracts an uptime in seconds.
func Uptime(v any) (float64, bool) {
	return toFloat(v)
}
