package client

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Backend selects which Proxmox API dialect a connection speaks. The two
// dialects share the api2/json envelope but differ in endpoints, auth header
// format, and payload shapes.
type Backend string

const (
	BackendPVE Backend = "pve"
	BackendPBS Backend = "pbs"
)

func (b Backend) String() string { return string(b) }

// IsValid reports whether b is one of the two supported dialects.
func (b Backend) IsValid() bool {
	return b == BackendPVE || b == BackendPBS
}

// DefaultPort returns the stock API port for the backend (8006 for PVE,
// 8007 for PBS).
func (b Backend) DefaultPort() int {
	if b == BackendPBS {
		return 8007
	}
	return 8006
}

// VersionInfo represents the /version payload. PBS omits repoid.
type VersionInfo struct {
	Version string `json:"version"`
	Release string `json:"release"`
	RepoID  string `json:"repoid"`
}

// NodeEntry represents a single entry of the PVE /nodes listing.
type NodeEntry struct {
	Node   string `json:"node"`
	Status string `json:"status"`
}

// NodeStatus is the raw /nodes/{node}/status payload. PVE and PBS share no
// stable schema here (PVE nests memory and loadavg, PBS flattens some fields
// and wraps others in a "node" sub-object), so the payload stays a generic
// map and the metric package extracts what it understands.
type NodeStatus map[string]any

// Guest represents a single entry of a /qemu or /lxc listing.
// vmid is a json.Number because the LXC endpoint reports it as a string on
// some Proxmox versions.
type Guest struct {
	VMID   json.Number `json:"vmid"`
	Name   string      `json:"name"`
	Status string      `json:"status"`
	Uptime int64       `json:"uptime"`
}

// Task represents a single entry of a /nodes/{node}/tasks listing.
// PVE reports the task state under "status", PBS under "state"; a task that
// is still running has no endtime.
type Task struct {
	UPID       string     `json:"upid"`
	Node       string     `json:"node"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	State      string     `json:"state"`
	ExitStatus string     `json:"exitstatus"`
	StartTime  int64      `json:"starttime"`
	EndTime    *EpochTime `json:"endtime"`
}

// EpochTime is an epoch-seconds value tolerant of the dialect drift seen in
// task listings: a JSON number, a numeric string, or garbage. Garbage decodes
// with Valid=false instead of failing the whole listing.
type EpochTime struct {
	Seconds float64
	Valid   bool
}

func (t *EpochTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	t.Seconds = f
	t.Valid = true
	return nil
}

func (t EpochTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Seconds)
}

// DatastoreUsage represents a single entry of the PBS /status/datastore-usage
// listing. Byte counts; avail and used may not sum to total on ZFS stores.
type DatastoreUsage struct {
	Store string `json:"store"`
	Used  int64  `json:"used"`
	Avail int64  `json:"avail"`
	Total int64  `json:"total"`
	Error string `json:"error"`
}
