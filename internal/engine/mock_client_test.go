package engine

import (
	"context"
	"errors"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

// MockProxmoxClient implements client.ProxmoxClient for testing.
type MockProxmoxClient struct {
	BackendValue client.Backend

	VersionFn        func(ctx context.Context) (*client.VersionInfo, error)
	NodesFn          func(ctx context.Context) ([]client.NodeEntry, error)
	NodeStatusFn     func(ctx context.Context, node string) (client.NodeStatus, error)
	QemuFn           func(ctx context.Context, node string) ([]client.Guest, error)
	LxcFn            func(ctx context.Context, node string) ([]client.Guest, error)
	TasksFn          func(ctx context.Context, node string, filter client.TaskFilter) ([]client.Task, error)
	DatastoreUsageFn func(ctx context.Context) ([]client.DatastoreUsage, error)
}

func (m *MockProxmoxClient) GetVersion(ctx context.Context) (*client.VersionInfo, error) {
	if m.VersionFn != nil {
		return m.VersionFn(ctx)
	}
	return &client.VersionInfo{Version: "8.2.4", Release: "8.2"}, nil
}

func (m *MockProxmoxClient) GetNodes(ctx context.Context) ([]client.NodeEntry, error) {
	if m.NodesFn != nil {
		return m.NodesFn(ctx)
	}
	return []client.NodeEntry{{Node: "pve1", Status: "online"}}, nil
}

func (m *MockProxmoxClient) GetNodeStatus(ctx context.Context, node string) (client.NodeStatus, error) {
	if m.NodeStatusFn != nil {
		return m.NodeStatusFn(ctx, node)
	}
	return client.NodeStatus{
		"cpu":    0.25,
		"memory": map[string]any{"used": float64(8 << 30), "total": float64(32 << 30)},
		"uptime": float64(90061),
	}, nil
}

func (m *MockProxmoxClient) GetQemu(ctx context.Context, node string) ([]client.Guest, error) {
	if m.QemuFn != nil {
		return m.QemuFn(ctx, node)
	}
	return []client.Guest{
		{VMID: "100", Name: "vm-web", Status: "running"},
		{VMID: "101", Name: "vm-db", Status: "stopped"},
	}, nil
}

func (m *MockProxmoxClient) GetLxc(ctx context.Context, node string) ([]client.Guest, error) {
	if m.LxcFn != nil {
		return m.LxcFn(ctx, node)
	}
	return []client.Guest{
		{VMID: "200", Name: "ct-dns", Status: "running"},
	}, nil
}

func (m *MockProxmoxClient) GetTasks(ctx context.Context, node string, filter client.TaskFilter) ([]client.Task, error) {
	if m.TasksFn != nil {
		return m.TasksFn(ctx, node, filter)
	}
	return nil, nil
}

func (m *MockProxmoxClient) GetDatastoreUsage(ctx context.Context) ([]client.DatastoreUsage, error) {
	if m.DatastoreUsageFn != nil {
		return m.DatastoreUsageFn(ctx)
	}
	return nil, nil
}

func (m *MockProxmoxClient) Backend() client.Backend {
	if m.BackendValue != "" {
		return m.BackendValue
	}
	return client.BackendPVE
}

func (m *MockProxmoxClient) BaseURL() string {
	return "https://mock:8006/api2/json"
}

var errMockFailure = errors.New("mock failure")
