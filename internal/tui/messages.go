package tui

import (
	"time"

	"github.com/Sundancer78/proxmox-suits/internal/model"
)

// RefreshResult carries the outcome of one connection's refresh cycle.
// Exactly one of Snapshot and Err is set.
type RefreshResult struct {
	Snapshot *model.Snapshot
	Err      error
}

// RefreshedMsg delivers the results of a full poll cycle, one entry per
// configured connection, in connection order.
type RefreshedMsg struct {
	Results []RefreshResult
}

// TickMsg triggers the next scheduled poll.
type TickMsg time.Time
