package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/Sundancer78/proxmox-suits/internal/client"
	"github.com/Sundancer78/proxmox-suits/internal/engine"
	"github.com/Sundancer78/proxmox-suits/internal/metric"
	"github.com/Sundancer78/proxmox-suits/internal/model"
)

// conn holds the per-connection poll state.
type conn struct {
	name    string
	backend client.Backend
	baseURL string
	coord   *engine.Coordinator

	current     *model.Snapshot
	history     *model.History
	dsTable     DatastoreTableModel
	lastErr     error
	lastUpdated time.Time
	fails       int
}

// Connection pairs a configured name with its refresh coordinator.
type Connection struct {
	Name        string
	Coordinator *engine.Coordinator
}

// App is the root Bubble Tea model for the dashboard. It polls every
// configured connection on a fixed interval and renders the active one.
type App struct {
	conns        []*conn
	active       int
	pollInterval time.Duration

	// fetching is true while a fetchCmd goroutine is in-flight.
	fetching bool

	// Layout
	width, height int

	// UI state
	showHelp bool
}

// NewApp creates a new App over the given connections and poll interval.
func NewApp(connections []Connection, interval time.Duration) *App {
	app := &App{
		pollInterval: interval,
		fetching:     true, // Init() always issues an immediate fetchCmd
	}
	for _, c := range connections {
		app.conns = append(app.conns, &conn{
			name:    c.Name,
			backend: c.Coordinator.Client().Backend(),
			baseURL: c.Coordinator.Client().BaseURL(),
			coord:   c.Coordinator,
			history: model.NewHistory(0),
			dsTable: NewDatastoreTable(),
		})
	}
	return app
}

// activeConn returns the currently displayed connection, or nil when no
// connections are configured.
func (app *App) activeConn() *conn {
	if len(app.conns) == 0 {
		return nil
	}
	if app.active < 0 || app.active >= len(app.conns) {
		app.active = 0
	}
	return app.conns[app.active]
}

// Init implements tea.Model. Starts the first poll immediately on launch.
func (app *App) Init() tea.Cmd {
	return fetchCmd(app.conns, app.pollInterval)
}

// Update implements tea.Model, the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case RefreshedMsg:
		app.fetching = false
		app.applyResults(msg.Results)
		// Failures reschedule at the same fixed interval as successes; a
		// flapping host must not change the polling cadence.
		return app, tickCmd(app.pollInterval)

	case TickMsg:
		if app.fetching {
			return app, nil
		}
		app.fetching = true
		return app, fetchCmd(app.conns, app.pollInterval)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if app.fetching {
				return app, nil
			}
			app.fetching = true
			return app, fetchCmd(app.conns, app.pollInterval)
		case key.Matches(msg, keys.Tab):
			if len(app.conns) > 0 {
				app.active = (app.active + 1) % len(app.conns)
			}
		case key.Matches(msg, keys.ShiftTab):
			if len(app.conns) > 0 {
				app.active = (app.active - 1 + len(app.conns)) % len(app.conns)
			}
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		default:
			// Remaining keys drive the datastore table of the active PBS host.
			if c := app.activeConn(); c != nil && c.backend == client.BackendPBS {
				var cmd tea.Cmd
				c.dsTable, cmd = c.dsTable.Update(msg)
				return app, cmd
			}
		}
	}

	return app, nil
}

// applyResults folds one poll cycle into the per-connection state. A failed
// connection keeps its previous snapshot so the dashboard shows the last
// known data alongside the offline indicator.
func (app *App) applyResults(results []RefreshResult) {
	for i, res := range results {
		if i >= len(app.conns) {
			break
		}
		c := app.conns[i]

		if res.Err != nil {
			c.lastErr = res.Err
			c.fails++
			continue
		}

		snap := res.Snapshot
		c.current = snap
		c.lastErr = nil
		c.fails = 0
		c.lastUpdated = snap.FetchedAt
		c.pushHistory(snap)

		if c.backend == client.BackendPBS {
			c.dsTable.SetData(snap.Datastores)
			c.dsTable.focused = true
		}
	}
}

// pushHistory appends the snapshot's trend values to the sparkline history.
// Absent metrics record as zero so the series stays aligned across ticks.
func (c *conn) pushHistory(snap *model.Snapshot) {
	cpu, _ := metric.CPUPercent(snap.Status["cpu"])
	mem, _ := metric.MemoryPercent(snap.Status)
	load, _ := metric.Load1m(snap.Status["loadavg"])

	c.history.Push(model.Point{
		Timestamp:     snap.FetchedAt,
		CPUPercent:    cpu,
		MemoryPercent: mem,
		Load1m:        load,
		RunningTasks:  float64(metric.CountRunningTasks(snap.TasksRunning)),
	})
}

// View implements tea.Model. Renders the full dashboard for the active
// connection.
func (app *App) View() string {
	var parts []string

	if h := renderHeader(app); h != "" {
		parts = append(parts, h)
	}
	if o := renderOverview(app); o != "" {
		parts = append(parts, o)
	}
	if m := renderMetricsRow(app); m != "" {
		parts = append(parts, m)
	}
	if c := app.activeConn(); c != nil && c.backend == client.BackendPBS && c.current != nil {
		parts = append(parts, c.dsTable.renderTable(app))
	}
	parts = append(parts, renderFooter(app))

	return strings.Join(parts, "\n")
}

// tickCmd schedules the next poll after duration d.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchCmd is a Bubble Tea command that refreshes every connection
// concurrently and returns a RefreshedMsg. Each connection fails or
// succeeds on its own; one unreachable host never blocks the others'
// results.
func fetchCmd(conns []*conn, interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		timeout := interval - 500*time.Millisecond
		if timeout < 500*time.Millisecond {
			timeout = 500 * time.Millisecond
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results := make([]RefreshResult, len(conns))

		g, gctx := errgroup.WithContext(ctx)
		for i, c := range conns {
			g.Go(func() error {
				snap, err := c.coord.Refresh(gctx)
				if err != nil {
					results[i] = RefreshResult{Err: err}
					return nil
				}
				results[i] = RefreshResult{Snapshot: snap}
				return nil
			})
		}
		// Closures never return errors; Wait only joins the goroutines.
		_ = g.Wait()

		return RefreshedMsg{Results: results}
	}
}
