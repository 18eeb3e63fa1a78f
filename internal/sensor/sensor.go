// Package sensor maps snapshots to the read-only sensor entities a
// connection exposes. Each sensor is a Metric tag with one pure extraction in
// evaluate, with no per-sensor closures.
package sensor

import (
	"fmt"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

// Unit classifies how a reading's value is rendered.
type Unit int

const (
	UnitNone Unit = iota // dimensionless count
	UnitPercent
	UnitGiB
	UnitSeconds
	UnitText // free text, Reading.Text carries the value
)

// Metric identifies one sensor kind.
type Metric int

const (
	MetricCPUPercent Metric = iota
	MetricMemoryPercent
	MetricMemoryUsedGiB
	MetricMemoryTotalGiB
	MetricLoad1m
	MetricUptimeSeconds
	MetricUptimeText
	MetricVMsRunning
	MetricVMsTotal
	MetricLXCsRunning
	MetricLXCsTotal
	MetricRunningTasks
	MetricFailedTasks24h

	// Per-datastore metrics (PBS); expanded once per store in Readings.
	MetricDatastoreFreeGiB
	MetricDatastoreUsedGiB
	MetricDatastoreTotalGiB
	MetricDatastoreUsagePercent
)

// Descriptor describes one sensor entity.
type Descriptor struct {
	Metric Metric
	Key    string
	Name   string
	Unit   Unit
}

var pveDescriptors = []Descriptor{
	{MetricCPUPercent, "cpu_percent", "CPU Usage", UnitPercent},
	{MetricMemoryPercent, "mem_percent", "Memory Usage", UnitPercent},
	{MetricMemoryUsedGiB, "mem_used_gib", "Memory Used", UnitGiB},
	{MetricMemoryTotalGiB, "mem_total_gib", "Memory Total", UnitGiB},
	{MetricLoad1m, "load_1m", "Load (1m)", UnitNone},
	{MetricUptimeSeconds, "uptime", "Uptime", UnitSeconds},
	{MetricUptimeText, "uptime_lesbar", "Uptime (lesbar)", UnitText},
	{MetricVMsRunning, "vms_running", "VMs Running", UnitNone},
	{MetricVMsTotal, "vms_total", "VMs Total", UnitNone},
	{MetricLXCsRunning, "lxcs_running", "LXCs Running", UnitNone},
	{MetricLXCsTotal, "lxcs_total", "LXCs Total", UnitNone},
	{MetricRunningTasks, "running_tasks", "Running Tasks", UnitNone},
}

var pbsDescriptors = []Descriptor{
	{MetricCPUPercent, "cpu_percent", "CPU Usage", UnitPercent},
	{MetricMemoryUsedGiB, "mem_used_gib", "Memory Used", UnitGiB},
	{MetricMemoryTotalGiB, "mem_total_gib", "Memory Total", UnitGiB},
	{MetricUptimeSeconds, "uptime", "Uptime", UnitSeconds},
	{MetricUptimeText, "uptime_lesbar", "Uptime (lesbar)", UnitText},
	{MetricRunningTasks, "running_tasks", "Running Tasks", UnitNone},
	{MetricFailedTasks24h, "failed_tasks_24h", "Failed Tasks (24h)", UnitNone},
}

// datastoreDescriptors are expanded once per datastore; Key and Name receive
// the store prefix in Readings.
var datastoreDescriptors = []Descriptor{
	{MetricDatastoreFreeGiB, "free_gib", "Free", UnitGiB},
	{MetricDatastoreUsedGiB, "used_gib", "Used", UnitGiB},
	{MetricDatastoreTotalGiB, "total_gib", "Total", UnitGiB},
	{MetricDatastoreUsagePercent, "usage_percent", "Usage", UnitPercent},
}

// ForBackend returns the node-level sensor set of a backend.
func ForBackend(b client.Backend) []Descriptor {
	if b == client.BackendPBS {
		return pbsDescriptors
	}
	return pveDescriptors
}

// DeviceID returns the stable per-connection device identifier. It never
// changes for display reasons.
func DeviceID(b client.Backend, host string, port int) string {
	return fmt.Sprintf("%s:%s:%d", b, host, port)
}

// UniqueID returns the stable per-sensor identifier within a connection.
func UniqueID(connectionID string, b client.Backend, key string) string {
	return fmt.Sprintf("%s:%s:%s", connectionID, b, key)
}
