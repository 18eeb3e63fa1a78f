package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

// newTestClient creates a DefaultClient pointed at the given TLS test server.
// Test servers use self-signed certificates, so skip-verify is always on.
func newTestClient(t *testing.T, backend Backend, srv *httptest.Server) *DefaultClient {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	c, err := NewDefaultClient(ClientConfig{
		Backend:            backend,
		Host:               u.Hostname(),
		Port:               port,
		TokenID:            "monitor@pam!token",
		TokenSecret:        "secret",
		InsecureSkipVerify: true,
		RequestTimeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewDefaultClient: %v", err)
	}
	return c
}

func TestNewDefaultClient_Validation(t *testing.T) {
	if _, err := NewDefaultClient(ClientConfig{Backend: BackendPVE}); err == nil {
		t.Error("expected error for empty host")
	}
	if _, err := NewDefaultClient(ClientConfig{Backend: "esxi", Host: "pve1"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewDefaultClient_Defaults(t *testing.T) {
	pve, err := NewDefaultClient(ClientConfig{Backend: BackendPVE, Host: "pve1"})
	if err != nil {
		t.Fatalf("NewDefaultClient: %v", err)
	}
	if pve.BaseURL() != "https://pve1:8006/api2/json" {
		t.Errorf("BaseURL = %q, want %q", pve.BaseURL(), "https://pve1:8006/api2/json")
	}

	pbs, err := NewDefaultClient(ClientConfig{Backend: BackendPBS, Host: "pbs1"})
	if err != nil {
		t.Fatalf("NewDefaultClient: %v", err)
	}
	if pbs.BaseURL() != "https://pbs1:8007/api2/json" {
		t.Errorf("BaseURL = %q, want %q", pbs.BaseURL(), "https://pbs1:8007/api2/json")
	}
}

func TestAuthHeader(t *testing.T) {
	tests := []struct {
		backend Backend
		want    string
	}{
		{BackendPVE, "PVEAPIToken=monitor@pam!token=secret"},
		{BackendPBS, "PBSAPIToken monitor@pam!token:secret"},
	}
	for _, tc := range tests {
		t.Run(string(tc.backend), func(t *testing.T) {
			var got string
			srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(`{"data":null}`))
			}))
			defer srv.Close()

			c := newTestClient(t, tc.backend, srv)
			if _, err := c.Get(context.Background(), "/version", nil); err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != tc.want {
				t.Errorf("Authorization = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGet_UnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Proxmox often declares no JSON content type; the client must not care.
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"data":{"version":"8.2.4"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPVE, srv)
	raw, err := c.Get(context.Background(), "/version", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `{"version":"8.2.4"}` {
		t.Errorf("data = %s, want inner object", raw)
	}
}

func TestGet_MissingEnvelopeYieldsNil(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no data key", `{"success":1}`},
		{"null data", `{"data":null}`},
		{"not an object", `[1,2,3]`},
		{"empty body", ``},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := newTestClient(t, BackendPVE, srv)
			raw, err := c.Get(context.Background(), "/version", nil)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if len(raw) != 0 {
				t.Errorf("data = %q, want absent", raw)
			}
		})
	}
}

func TestGet_HTTPError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":{"permission":"denied"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPVE, srv)
	_, err := c.Get(context.Background(), "/nodes/pve1/tasks", nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Error("Body is empty, want response body")
	}
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, BackendPBS, srv)
	_, err := c.Get(context.Background(), "/version", nil)
	if err == nil {
		t.Fatal("expected error for closed server")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if apiErr.Err == nil {
		t.Error("Err is nil, want wrapped transport error")
	}
}

func TestGetTasks_QueryParams(t *testing.T) {
	var query url.Values
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api2/json/nodes/pve1/tasks" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPVE, srv)
	if _, err := c.GetTasks(context.Background(), "pve1", TaskFilter{OnlyRunning: true, Limit: 200}); err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if query.Get("running") != "true" {
		t.Errorf("running = %q, want %q", query.Get("running"), "true")
	}
	if query.Get("limit") != "200" {
		t.Errorf("limit = %q, want %q", query.Get("limit"), "200")
	}
}

func TestGetTasks_DecodesDialectVariants(t *testing.T) {
	fixture := `{"data":[
		{"upid":"UPID:pve1:1","status":"running","starttime":100},
		{"upid":"UPID:pve1:2","status":"stopped","exitstatus":"OK","starttime":100,"endtime":200},
		{"upid":"UPID:pbs1:3","state":"active","starttime":100},
		{"upid":"UPID:pbs1:4","state":"stopped","exitstatus":"error","starttime":100,"endtime":"250"}
	]}`
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPBS, srv)
	tasks, err := c.GetTasks(context.Background(), "localhost", TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}
	if tasks[0].EndTime != nil {
		t.Error("tasks[0].EndTime should be nil for running task")
	}
	if tasks[1].EndTime == nil || !tasks[1].EndTime.Valid || tasks[1].EndTime.Seconds != 200 {
		t.Errorf("tasks[1].EndTime = %+v, want 200", tasks[1].EndTime)
	}
	if tasks[2].State != "active" {
		t.Errorf("tasks[2].State = %q, want %q", tasks[2].State, "active")
	}
	// PBS quirk: endtime as numeric string.
	if tasks[3].EndTime == nil || !tasks[3].EndTime.Valid || tasks[3].EndTime.Seconds != 250 {
		t.Errorf("tasks[3].EndTime = %+v, want 250", tasks[3].EndTime)
	}
}

func TestGetDatastoreUsage(t *testing.T) {
	fixture := `{"data":[
		{"store":"backup1","used":107374182400,"avail":214748364800,"total":322122547200},
		{"store":"offsite","used":0,"avail":0,"total":0,"error":"store offline"}
	]}`
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api2/json/status/datastore-usage" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPBS, srv)
	stores, err := c.GetDatastoreUsage(context.Background())
	if err != nil {
		t.Fatalf("GetDatastoreUsage: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("len(stores) = %d, want 2", len(stores))
	}
	if stores[0].Store != "backup1" {
		t.Errorf("Store = %q, want %q", stores[0].Store, "backup1")
	}
	if stores[0].Used != 107374182400 {
		t.Errorf("Used = %d, want 107374182400", stores[0].Used)
	}
	if stores[1].Error != "store offline" {
		t.Errorf("Error = %q, want %q", stores[1].Error, "store offline")
	}
}

func TestGetQemu_EscapesNodeName(t *testing.T) {
	var path string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPVE, srv)
	if _, err := c.GetQemu(context.Background(), "pve/1"); err != nil {
		t.Fatalf("GetQemu: %v", err)
	}
	if path != "/api2/json/nodes/pve%2F1/qemu" {
		t.Errorf("path = %q, want escaped node segment", path)
	}
}

func TestGetLxc_StringVMID(t *testing.T) {
	fixture := `{"data":[
		{"vmid":"101","name":"ct-dns","status":"running"},
		{"vmid":102,"name":"ct-db","status":"stopped"}
	]}`
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPVE, srv)
	guests, err := c.GetLxc(context.Background(), "pve1")
	if err != nil {
		t.Fatalf("GetLxc: %v", err)
	}
	if len(guests) != 2 {
		t.Fatalf("len(guests) = %d, want 2", len(guests))
	}
	if guests[0].VMID.String() != "101" {
		t.Errorf("guests[0].VMID = %q, want %q", guests[0].VMID.String(), "101")
	}
	if guests[1].VMID.String() != "102" {
		t.Errorf("guests[1].VMID = %q, want %q", guests[1].VMID.String(), "102")
	}
}

func TestGetNodeStatus_KeepsRawShape(t *testing.T) {
	fixture := `{"data":{"cpu":0.0423,"memory":{"used":8589934592,"total":34359738368},"uptime":90061,"loadavg":["0.42","0.36","0.30"]}}`
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	c := newTestClient(t, BackendPVE, srv)
	status, err := c.GetNodeStatus(context.Background(), "pve1")
	if err != nil {
		t.Fatalf("GetNodeStatus: %v", err)
	}
	if status["cpu"] != 0.0423 {
		t.Errorf("cpu = %v, want 0.0423", status["cpu"])
	}
	if _, ok := status["memory"].(map[string]any); !ok {
		t.Errorf("memory = %T, want nested map", status["memory"])
	}
}
