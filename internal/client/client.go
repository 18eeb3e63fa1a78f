package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ProxmoxClient defines the interface for talking to a single Proxmox VE or
// Proxmox Backup Server host.
type ProxmoxClient interface {
	GetVersion(ctx context.Context) (*VersionInfo, error)
	GetNodes(ctx context.Context) ([]NodeEntry, error)
	GetNodeStatus(ctx context.Context, node string) (NodeStatus, error)
	GetQemu(ctx context.Context, node string) ([]Guest, error)
	GetLxc(ctx context.Context, node string) ([]Guest, error)
	GetTasks(ctx context.Context, node string, filter TaskFilter) ([]Task, error)
	GetDatastoreUsage(ctx context.Context) ([]DatastoreUsage, error)
	Backend() Backend
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	Backend            Backend
	Host               string
	Port               int // 0 → backend default (8006/8007)
	TokenID            string
	TokenSecret        string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration // 0 → 20s
}

// APIError is returned for any failed endpoint call: a non-2xx response
// (StatusCode and Body set) or a transport-level fault (Err set, wrapping the
// cause).
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return "proxmox api: " + e.Err.Error()
	}
	return fmt.Sprintf("proxmox api: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// DefaultClient implements ProxmoxClient using the standard net/http package.
type DefaultClient struct {
	http    *http.Client
	config  ClientConfig
	baseURL string
	auth    string
}

// NewDefaultClient constructs a DefaultClient from the given config.
// It configures TLS skip-verify and request timeout from the config.
// Returns an error if Host is empty or Backend is unknown.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("Host is required")
	}
	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("unknown backend %q (must be pve or pbs)", cfg.Backend)
	}
	if cfg.Port <= 0 {
		cfg.Port = cfg.Backend.DefaultPort()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 20 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	// The two dialects use different token header formats.
	var auth string
	if cfg.Backend == BackendPVE {
		auth = fmt.Sprintf("PVEAPIToken=%s=%s", cfg.TokenID, cfg.TokenSecret)
	} else {
		auth = fmt.Sprintf("PBSAPIToken %s:%s", cfg.TokenID, cfg.TokenSecret)
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:  cfg,
		baseURL: fmt.Sprintf("https://%s:%d/api2/json", cfg.Host, cfg.Port),
		auth:    auth,
	}, nil
}

// Backend returns the configured API dialect.
func (c *DefaultClient) Backend() Backend { return c.config.Backend }

// BaseURL returns the api2/json base URL of the host.
func (c *DefaultClient) BaseURL() string { return c.baseURL }

// Get performs a GET request to the given path (relative to the api2/json
// base) and returns the value under the response envelope's "data" key.
// The body is parsed as JSON regardless of the declared content type; a
// missing envelope or data key yields a nil result, not an error. Non-2xx
// statuses and transport faults return an *APIError.
func (c *DefaultClient) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.auth)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()

	const maxResponseBytes = 32 * 1024 * 1024 // 32 MB, well above any real Proxmox response
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Not the standard envelope; treat as "no data" rather than failing.
		return nil, nil
	}
	if string(envelope.Data) == "null" {
		return nil, nil
	}
	return envelope.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
