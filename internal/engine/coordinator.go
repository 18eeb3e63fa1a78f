package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Sundancer78/proxmox-suits/internal/client"
	"github.com/Sundancer78/proxmox-suits/internal/model"
)

// Coordinator polls one Proxmox connection and assembles per-cycle snapshots.
// Endpoint fetches are best-effort: a single forbidden or broken endpoint
// (API tokens are commonly scoped to a subset of the API) yields an empty
// default instead of blanking out the whole snapshot.
//
// A Coordinator is not safe for concurrent use; the caller serializes
// Refresh invocations.
type Coordinator struct {
	client client.ProxmoxClient
	log    *slog.Logger

	// node is resolved lazily for PVE (first entry of /nodes) and sticks
	// across refreshes once known.
	node string
}

// NewCoordinator creates a Coordinator for the given client. node is an
// optional override; PBS connections without one default to "localhost".
func NewCoordinator(c client.ProxmoxClient, node string, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	if node == "" && c.Backend() == client.BackendPBS {
		node = "localhost"
	}
	return &Coordinator{client: c, log: log, node: node}
}

// Node returns the node name the coordinator is currently polling; empty for
// a PVE connection whose node has not been resolved yet.
func (co *Coordinator) Node() string { return co.node }

// Client returns the underlying API client.
func (co *Coordinator) Client() client.ProxmoxClient { return co.client }

// Refresh runs one poll cycle and returns the assembled snapshot. Any error
// returned is a *RefreshError; the caller keeps the previous snapshot and
// retries at the next regular interval.
func (co *Coordinator) Refresh(ctx context.Context) (*model.Snapshot, error) {
	snap, err := co.refresh(ctx)
	if err != nil {
		var rerr *RefreshError
		if errors.As(err, &rerr) {
			return nil, err
		}
		return nil, &RefreshError{Reason: err.Error(), Err: err}
	}
	return snap, nil
}

func (co *Coordinator) refresh(ctx context.Context) (*model.Snapshot, error) {
	version := co.fetchVersion(ctx)

	if co.client.Backend() == client.BackendPVE {
		return co.refreshPVE(ctx, version)
	}
	return co.refreshPBS(ctx, version)
}

func (co *Coordinator) refreshPVE(ctx context.Context, version *client.VersionInfo) (*model.Snapshot, error) {
	if co.node == "" {
		nodes, err := co.client.GetNodes(ctx)
		if err != nil {
			co.debugf(ctx, "/nodes", err)
		}
		if len(nodes) > 0 {
			co.node = nodes[0].Node
		}
	}
	if co.node == "" {
		return nil, &RefreshError{Reason: "could not determine PVE node name"}
	}

	status := co.fetchStatus(ctx)

	var counts model.GuestCounts
	vms, err := co.client.GetQemu(ctx, co.node)
	if err != nil {
		co.debugf(ctx, "/qemu", err)
	} else {
		counts.VMsTotal = len(vms)
		counts.VMsRunning = countRunning(vms)
	}

	lxcs, err := co.client.GetLxc(ctx, co.node)
	if err != nil {
		co.debugf(ctx, "/lxc", err)
	} else {
		counts.LXCsTotal = len(lxcs)
		counts.LXCsRunning = countRunning(lxcs)
	}

	tasksRunning := co.fetchTasks(ctx, client.TaskFilter{OnlyRunning: true, Limit: 200})

	return &model.Snapshot{
		Backend: client.BackendPVE,
		Node:    co.node,
		// Display naming uses the node name only, never the host/IP.
		DisplayName:  co.node,
		Version:      version,
		Status:       status,
		Counts:       counts,
		TasksRunning: tasksRunning,
		FetchedAt:    time.Now(),
	}, nil
}

func (co *Coordinator) refreshPBS(ctx context.Context, version *client.VersionInfo) (*model.Snapshot, error) {
	status := co.fetchStatus(ctx)

	datastores, err := co.client.GetDatastoreUsage(ctx)
	if err != nil {
		co.debugf(ctx, "/status/datastore-usage", err)
		datastores = nil
	}

	tasks := co.fetchTasks(ctx, client.TaskFilter{Limit: 200})
	tasksRunning := co.fetchTasks(ctx, client.TaskFilter{OnlyRunning: true, Limit: 200})

	// PBS has fewer endpoints to cross-check than PVE: when every single one
	// comes back empty the host is unreachable, as opposed to reachable but
	// permission-scoped.
	if len(status) == 0 && len(datastores) == 0 && len(tasks) == 0 && len(tasksRunning) == 0 {
		return nil, &RefreshError{Reason: "PBS: all API calls failed (no data returned)"}
	}

	display := hostnameFromStatus(status)
	if display == "" {
		display = "PBS"
	}

	return &model.Snapshot{
		Backend:      client.BackendPBS,
		Node:         co.node,
		DisplayName:  display,
		Version:      version,
		Status:       status,
		Datastores:   datastores,
		Tasks:        tasks,
		TasksRunning: tasksRunning,
		FetchedAt:    time.Now(),
	}, nil
}

func (co *Coordinator) fetchVersion(ctx context.Context) *client.VersionInfo {
	v, err := co.client.GetVersion(ctx)
	if err != nil {
		co.debugf(ctx, "/version", err)
		return nil
	}
	return v
}

func (co *Coordinator) fetchStatus(ctx context.Context) client.NodeStatus {
	status, err := co.client.GetNodeStatus(ctx, co.node)
	if err != nil {
		co.debugf(ctx, "/status", err)
		return client.NodeStatus{}
	}
	if status == nil {
		return client.NodeStatus{}
	}
	return status
}

func (co *Coordinator) fetchTasks(ctx context.Context, filter client.TaskFilter) []client.Task {
	tasks, err := co.client.GetTasks(ctx, co.node, filter)
	if err != nil {
		co.debugf(ctx, "/tasks", err)
		return nil
	}
	return tasks
}

func (co *Coordinator) debugf(ctx context.Context, path string, err error) {
	co.log.DebugContext(ctx, "endpoint fetch failed", "path", path, "err", err)
}

func countRunning(guests []client.Guest) int {
	n := 0
	for _, g := range guests {
		if g.Status == "running" {
			n++
		}
	}
	return n
}

// hostnameFromStatus extracts a display hostname from a PBS status payload,
// checking the top-level keys and a nested "node" sub-object as fallback.
func hostnameFromStatus(status client.NodeStatus) string {
	for _, key := range []string{"hostname", "nodename", "node", "name"} {
		if s, ok := status[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	if sub, ok := status["node"].(map[string]any); ok {
		for _, key := range []string{"hostname", "nodename", "name"} {
			if s, ok := sub[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	return ""
}
