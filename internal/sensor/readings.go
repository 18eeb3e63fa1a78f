package sensor

import (
	"time"

	"github.com/Sundancer78/proxmox-suits/internal/client"
	"github.com/Sundancer78/proxmox-suits/internal/metric"
	"github.com/Sundancer78/proxmox-suits/internal/model"
)

// Reading is one evaluated sensor value. Valid is false when the snapshot
// lacked the underlying field or it was malformed; the entity then shows as
// unavailable instead of a stale or zero value.
type Reading struct {
	Descriptor
	UniqueID string
	Value    float64 // numeric kinds
	Text     string  // UnitText kinds
	Valid    bool
}

// Readings evaluates every sensor of the snapshot's backend, expanding the
// per-datastore set for each PBS datastore. now anchors the trailing
// failed-task window. A nil snapshot yields nil.
func Readings(connectionID string, snap *model.Snapshot, now time.Time) []Reading {
	if snap == nil {
		return nil
	}

	descs := ForBackend(snap.Backend)
	out := make([]Reading, 0, len(descs)+len(snap.Datastores)*len(datastoreDescriptors))

	for _, d := range descs {
		value, text, ok := evaluate(d.Metric, snap, now)
		out = append(out, Reading{
			Descriptor: d,
			UniqueID:   UniqueID(connectionID, snap.Backend, d.Key),
			Value:      value,
			Text:       text,
			Valid:      ok,
		})
	}

	if snap.Backend == client.BackendPBS {
		for _, ds := range snap.Datastores {
			if ds.Store == "" {
				continue
			}
			for _, d := range datastoreDescriptors {
				value, ok := evaluateDatastore(d.Metric, ds)
				expanded := Descriptor{
					Metric: d.Metric,
					Key:    "ds:" + ds.Store + ":" + d.Key,
					Name:   "Datastore " + ds.Store + " " + d.Name,
					Unit:   d.Unit,
				}
				out = append(out, Reading{
					Descriptor: expanded,
					UniqueID:   UniqueID(connectionID, snap.Backend, expanded.Key),
					Value:      value,
					Valid:      ok,
				})
			}
		}
	}

	return out
}

// evaluate computes a node-level metric from the snapshot.
func evaluate(m Metric, snap *model.Snapshot, now time.Time) (float64, string, bool) {
	switch m {
	case MetricCPUPercent:
		v, ok := metric.CPUPercent(snap.Status["cpu"])
		return v, "", ok
	case MetricMemoryPercent:
		v, ok := metric.MemoryPercent(snap.Status)
		return v, "", ok
	case MetricMemoryUsedGiB:
		used, _, ok := metric.MemoryBytes(snap.Status)
		if !ok {
			return 0, "", false
		}
		v, ok := metric.BytesToGiB(used)
		return v, "", ok
	case MetricMemoryTotalGiB:
		_, total, ok := metric.MemoryBytes(snap.Status)
		if !ok {
			return 0, "", false
		}
		v, ok := metric.BytesToGiB(total)
		return v, "", ok
	case MetricLoad1m:
		v, ok := metric.Load1m(snap.Status["loadavg"])
		return v, "", ok
	case MetricUptimeSeconds:
		v, ok := metric.Uptime(snap.Status["uptime"])
		return v, "", ok
	case MetricUptimeText:
		s, ok := metric.FormatUptimeDE(snap.Status["uptime"])
		return 0, s, ok
	case MetricVMsRunning:
		return float64(snap.Counts.VMsRunning), "", true
	case MetricVMsTotal:
		return float64(snap.Counts.VMsTotal), "", true
	case MetricLXCsRunning:
		return float64(snap.Counts.LXCsRunning), "", true
	case MetricLXCsTotal:
		return float64(snap.Counts.LXCsTotal), "", true
	case MetricRunningTasks:
		return float64(metric.CountRunningTasks(snap.TasksRunning)), "", true
	case MetricFailedTasks24h:
		return float64(metric.CountFailedTasks(snap.Tasks, now)), "", true
	default:
		return 0, "", false
	}
}

// evaluateDatastore computes a per-datastore metric.
func evaluateDatastore(m Metric, ds client.DatastoreUsage) (float64, bool) {
	switch m {
	case MetricDatastoreFreeGiB:
		return metric.BytesToGiB(ds.Avail)
	case MetricDatastoreUsedGiB:
		return metric.BytesToGiB(ds.Used)
	case MetricDatastoreTotalGiB:
		return metric.BytesToGiB(ds.Total)
	case MetricDatastoreUsagePercent:
		return metric.Percent(ds.Used, ds.Total)
	default:
		return 0, false
	}
}
