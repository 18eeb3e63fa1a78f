package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sundancer78/proxmox-suits/internal/client"
	"github.com/Sundancer78/proxmox-suits/internal/config"
	"github.com/Sundancer78/proxmox-suits/internal/engine"
	"github.com/Sundancer78/proxmox-suits/internal/sensor"
	"github.com/Sundancer78/proxmox-suits/internal/tui"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML configuration file")
		interval   = flag.Duration("interval", 0, "polling interval override (e.g. 30s, 1m)")
		insecure   = flag.Bool("insecure", false, "skip TLS certificate verification for all connections")
		once       = flag.Bool("once", false, "poll every connection once, print the readings, and exit")
		logFile    = flag.String("log-file", "", "write logs to this file instead of discarding them")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: proxmox-suits [--config config.yaml] [--interval 30s] [--insecure] [--once]\n\n")
		fmt.Fprintf(os.Stderr, "examples:\n")
		fmt.Fprintf(os.Stderr, "  proxmox-suits\n")
		fmt.Fprintf(os.Stderr, "  proxmox-suits --config /etc/proxmox-suits/config.yaml --interval 1m\n")
		fmt.Fprintf(os.Stderr, "  proxmox-suits --once\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(flag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected argument %q\n", flag.Args()[0])
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := applyOverrides(cfg, *interval, *insecure); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := setupLogger(cfg, *once, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	conns, err := buildConnections(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *once {
		if !runOnce(context.Background(), conns, os.Stdout) {
			os.Exit(1)
		}
		return
	}

	app := tui.NewApp(conns, cfg.Interval.ToDuration())
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// applyOverrides folds command line overrides into the loaded configuration.
func applyOverrides(cfg *config.Config, interval time.Duration, insecure bool) error {
	if interval < 0 {
		return fmt.Errorf("--interval must be positive")
	}
	if interval > 0 {
		cfg.Interval = config.Duration(interval)
	}
	if insecure {
		for i := range cfg.Connections {
			cfg.Connections[i].VerifySSL = false
		}
	}
	return nil
}

// setupLogger builds the process logger. The TUI owns the terminal, so logs
// are discarded unless a log file is given; --once mode logs to stderr.
func setupLogger(cfg *config.Config, once bool, logFile string) (*slog.Logger, func(), error) {
	level := cfg.Log.Level.ToSlogLevel()
	noop := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, noop, fmt.Errorf("open log file: %w", err)
		}
		log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		return log, func() { f.Close() }, nil
	}

	if once {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), noop, nil
	}

	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})), noop, nil
}

// buildConnections constructs a client and coordinator per configured
// connection.
func buildConnections(cfg *config.Config, log *slog.Logger) ([]tui.Connection, error) {
	conns := make([]tui.Connection, 0, len(cfg.Connections))
	for _, cc := range cfg.Connections {
		c, err := client.NewDefaultClient(client.ClientConfig{
			Backend:            cc.Backend,
			Host:               cc.Host,
			Port:               cc.Port,
			TokenID:            cc.TokenID,
			TokenSecret:        cc.TokenSecret,
			InsecureSkipVerify: !cc.VerifySSL,
		})
		if err != nil {
			return nil, fmt.Errorf("connection %q: %w", cc.Name, err)
		}
		conns = append(conns, tui.Connection{
			Name:        cc.Name,
			Coordinator: engine.NewCoordinator(c, cc.Node, log.With("connection", cc.Name)),
		})
	}
	return conns, nil
}

// runOnce polls every connection a single time and prints the evaluated
// readings. Returns false when any connection failed.
func runOnce(ctx context.Context, conns []tui.Connection, w io.Writer) bool {
	ok := true
	now := time.Now()

	for _, conn := range conns {
		snap, err := conn.Coordinator.Refresh(ctx)
		if err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", conn.Name, err)
			ok = false
			continue
		}

		fmt.Fprintf(w, "%s (%s):\n", conn.Name, snap.DisplayName)
		for _, r := range sensor.Readings(conn.Name, snap, now) {
			fmt.Fprintln(w, "  "+formatReading(r))
		}
	}
	return ok
}

// formatReading renders one sensor reading as a human-readable line.
func formatReading(r sensor.Reading) string {
	if !r.Valid {
		return fmt.Sprintf("%-32s ---", r.Name)
	}
	switch r.Unit {
	case sensor.UnitText:
		return fmt.Sprintf("%-32s %s", r.Name, r.Text)
	case sensor.UnitPercent:
		return fmt.Sprintf("%-32s %.2f%%", r.Name, r.Value)
	case sensor.UnitGiB:
		return fmt.Sprintf("%-32s %.2f GiB", r.Name, r.Value)
	case sensor.UnitSeconds:
		return fmt.Sprintf("%-32s %.0fs", r.Name, r.Value)
	default:
		return fmt.Sprintf("%-32s %g", r.Name, r.Value)
	}
}
