package model

import (
	"time"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

// GuestCounts holds VM/container totals derived from the qemu and lxc
// listings of a PVE node.
type GuestCounts struct {
	VMsTotal    int
	VMsRunning  int
	LXCsTotal   int
	LXCsRunning int
}

// Snapshot holds the merged result of a single poll cycle against one
// connection. It is replaced wholesale every cycle: a failed endpoint fetch
// leaves its field at the empty default, never at the previous cycle's value.
//
// Counts and the guest-derived fields are PVE-only; Datastores and Tasks are
// PBS-only. TasksRunning and the common fields are populated for both.
type Snapshot struct {
	Backend     client.Backend
	Node        string
	DisplayName string // human name, never a host or IP
	Version     *client.VersionInfo
	Status      client.NodeStatus

	// PVE
	Counts GuestCounts

	// PBS
	Datastores []client.DatastoreUsage
	Tasks      []client.Task

	TasksRunning []client.Task

	FetchedAt time.Time
}
