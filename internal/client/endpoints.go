package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const defaultTaskLimit = 200

// TaskFilter narrows a /nodes/{node}/tasks listing. OnlyRunning filters
// server-side via running=true; Limit caps the number of entries (0 → 200).
type TaskFilter struct {
	OnlyRunning bool
	Limit       int
}

// GetVersion fetches the backend version from /version.
func (c *DefaultClient) GetVersion(ctx context.Context) (*VersionInfo, error) {
	raw, err := c.Get(ctx, "/version", nil)
	if err != nil {
		return nil, fmt.Errorf("GetVersion: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var result VersionInfo
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("GetVersion decode: %w", err)
	}
	return &result, nil
}

// GetNodes fetches the cluster node listing from /nodes (PVE only).
func (c *DefaultClient) GetNodes(ctx context.Context) ([]NodeEntry, error) {
	raw, err := c.Get(ctx, "/nodes", nil)
	if err != nil {
		return nil, fmt.Errorf("GetNodes: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var result []NodeEntry
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("GetNodes decode: %w", err)
	}
	return result, nil
}

// GetNodeStatus fetches the raw status payload from /nodes/{node}/status.
func (c *DefaultClient) GetNodeStatus(ctx context.Context, node string) (NodeStatus, error) {
	raw, err := c.Get(ctx, "/nodes/"+url.PathEscape(node)+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("GetNodeStatus: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var result NodeStatus
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("GetNodeStatus decode: %w", err)
	}
	return result, nil
}

// GetQemu fetches the VM listing from /nodes/{node}/qemu (PVE only).
func (c *DefaultClient) GetQemu(ctx context.Context, node string) ([]Guest, error) {
	return c.getGuests(ctx, node, "qemu")
}

// GetLxc fetches the container listing from /nodes/{node}/lxc (PVE only).
func (c *DefaultClient) GetLxc(ctx context.Context, node string) ([]Guest, error) {
	return c.getGuests(ctx, node, "lxc")
}

func (c *DefaultClient) getGuests(ctx context.Context, node, kind string) ([]Guest, error) {
	raw, err := c.Get(ctx, "/nodes/"+url.PathEscape(node)+"/"+kind, nil)
	if err != nil {
		return nil, fmt.Errorf("GetGuests %s: %w", kind, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var result []Guest
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("GetGuests %s decode: %w", kind, err)
	}
	return result, nil
}

// GetTasks fetches the task listing from /nodes/{node}/tasks.
func (c *DefaultClient) GetTasks(ctx context.Context, node string, filter TaskFilter) ([]Task, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTaskLimit
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if filter.OnlyRunning {
		params.Set("running", "true")
	}

	raw, err := c.Get(ctx, "/nodes/"+url.PathEscape(node)+"/tasks", params)
	if err != nil {
		return nil, fmt.Errorf("GetTasks: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var result []Task
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("GetTasks decode: %w", err)
	}
	return result, nil
}

// GetDatastoreUsage fetches datastore usage from /status/datastore-usage
// (PBS only).
func (c *DefaultClient) GetDatastoreUsage(ctx context.Context) ([]DatastoreUsage, error) {
	raw, err := c.Get(ctx, "/status/datastore-usage", nil)
	if err != nil {
		return nil, fmt.Errorf("GetDatastoreUsage: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var result []DatastoreUsage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("GetDatastoreUsage decode: %w", err)
	}
	return result, nil
}
