// Command powerd is the power policy daemon.
//
// It runs the power state machine and the running lock manager on top of a
// device backend, and optionally:
//   - writes a CBOR event log readable with power-log
//   - keeps a SQLite audit trail of lock changes and transitions
//   - serves read-only diagnostics over HTTP and WebSocket
//   - advertises the diagnostics server over mDNS
//   - offers an interactive shell
//
// Usage:
//
//	powerd [flags]
//
// Flags:
//
//	-config string            TOML configuration file
//	-backend string           Backend: sysfs, logind, null (default "null")
//	-backlight string         Backlight sysfs directory
//	-display-off-time int     AWAKE to INACTIVE delay in ms
//	-sleep-time int           INACTIVE to SLEEP delay in ms
//	-settings string          Settings store path
//	-event-log string         CBOR event log path
//	-audit-db string          SQLite audit database path
//	-monitor string           Diagnostics server address (host:port)
//	-advertise                Advertise the monitor over mDNS
//	-interactive              Start the interactive shell
//	-log-level string         Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Run against the null backend with a shell
//	powerd -interactive -log-level debug
//
//	# Run on hardware with diagnostics
//	powerd -config /etc/powerd/powerd.toml -backend logind \
//	    -backlight /sys/class/backlight/intel_backlight -monitor 127.0.0.1:8089
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/creachadair/taskgroup"
	"github.com/google/uuid"
	"github.com/powerpolicy/powermgr-go/cmd/powerd/interactive"
	"github.com/powerpolicy/powermgr-go/pkg/audit"
	"github.com/powerpolicy/powermgr-go/pkg/discovery"
	powerlog "github.com/powerpolicy/powermgr-go/pkg/log"
	"github.com/powerpolicy/powermgr-go/pkg/monitor"
	"github.com/powerpolicy/powermgr-go/pkg/persistence"
	"github.com/powerpolicy/powermgr-go/pkg/service"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("powerd", flag.ContinueOnError)
	fs.String("config", "", "TOML configuration file")
	interactiveMode := fs.Bool("interactive", false, "Start the interactive shell")
	showVersion := fs.Bool("version", false, "Show version information")

	// The config file is needed before the remaining flags so that flags
	// override file values.
	cfg, err := LoadConfig(findConfigFlag(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	registerFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Printf("powerd %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := newDaemon(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer d.Close()

	if *interactiveMode {
		shell, err := interactive.New(d.svc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		d.setOutput(shell.Stderr())
		go shell.Run(ctx, cancel)
	}

	if err := d.Run(ctx); err != nil {
		d.logger.Error("daemon failed", "error", err)
		return 1
	}
	d.logger.Info("shutdown complete")
	return 0
}

// findConfigFlag returns the value of -config in args without parsing the
// other flags.
func findConfigFlag(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(a) > 8 && a[:8] == "-config=":
			return a[8:]
		case len(a) > 9 && a[:9] == "--config=":
			return a[9:]
		}
	}
	return ""
}

// daemon wires the service to its optional sinks.
type daemon struct {
	cfg    Config
	logger *slog.Logger
	level  slog.Level
	output *swapWriter

	backends   *backends
	svc        *service.PowerService
	events     *powerlog.MultiLogger
	fileLog    *powerlog.FileLogger
	audit      *audit.Store
	monitor    *monitor.Server
	advertiser *discovery.Advertiser
}

func newDaemon(cfg Config, stderr io.Writer) (*daemon, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	out := &swapWriter{w: stderr}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	d := &daemon{
		cfg:    cfg,
		logger: logger,
		level:  level,
		output: out,
		events: powerlog.NewMultiLogger(),
	}
	if level <= slog.LevelDebug {
		d.events.Add(powerlog.NewSlogAdapter(logger))
	}

	if cfg.EventLogPath != "" {
		var opts []powerlog.FileOption
		if cfg.EventLogMaxBytes > 0 {
			opts = append(opts, powerlog.WithMaxBytes(cfg.EventLogMaxBytes))
		}
		fl, err := powerlog.NewFileLogger(cfg.EventLogPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("event log: %w", err)
		}
		d.fileLog = fl
		d.events.Add(fl)
	}

	if cfg.AuditDBPath != "" {
		store, err := audit.Open(audit.Config{Path: cfg.AuditDBPath, MaxRows: cfg.AuditMaxRows, Logger: logger})
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("audit: %w", err)
		}
		d.audit = store
	}

	b, err := newBackends(cfg, logger)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("backend: %w", err)
	}
	d.backends = b

	svcCfg := service.Config{
		DeviceAction:         b.device,
		LockAction:           b.locks,
		SuspendSourcesPath:   cfg.SuspendSourcesPath,
		WakeupSourcesPath:    cfg.WakeupSourcesPath,
		DisplayOffTime:       cfg.DisplayOffTimeMs,
		SleepTime:            cfg.SleepTimeMs,
		EnableDisplaySuspend: cfg.EnableDisplaySuspend,
		Audit:                d.audit,
		SessionID:            uuid.NewString(),
		EventLogger:          d.events,
		Logger:               logger,
	}
	if cfg.SettingsPath != "" {
		svcCfg.Settings = persistence.NewSettingsStore(cfg.SettingsPath)
	}
	svc, err := service.NewPowerService(svcCfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.svc = svc
	svc.OnEvent(d.handleEvent)

	if cfg.MonitorAddr != "" {
		mon, err := monitor.NewServer(monitor.Config{Source: svc, Version: Version, Logger: logger})
		if err != nil {
			d.Close()
			return nil, err
		}
		d.monitor = mon
		d.events.Add(mon)
	}

	if err := svc.Init(); err != nil {
		d.Close()
		return nil, fmt.Errorf("init: %w", err)
	}
	return d, nil
}

// Run starts the service and the monitor and blocks until ctx is done.
func (d *daemon) Run(ctx context.Context) error {
	if err := d.svc.Start(ctx); err != nil {
		return err
	}
	d.logger.Info("power service started", "state", d.svc.PowerState(), "backend", d.cfg.Backend)

	g := taskgroup.New(nil)
	if d.monitor != nil {
		ln, err := net.Listen("tcp", d.cfg.MonitorAddr)
		if err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
		d.logger.Info("monitor listening", "addr", ln.Addr().String())
		g.Go(func() error { return d.monitor.Serve(ctx, ln) })

		if d.cfg.Advertise {
			d.startAdvertising(ln.Addr())
		}
	}

	<-ctx.Done()
	d.logger.Info("shutting down")
	if err := d.svc.Stop(); err != nil && !errors.Is(err, service.ErrNotStarted) {
		d.logger.Warn("stop service", "error", err)
	}
	return g.Wait()
}

func (d *daemon) startAdvertising(addr net.Addr) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}
	host, _ := os.Hostname()
	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{}, d.logger)
	err := adv.Advertise(discovery.Info{
		Instance: discovery.DefaultInstanceName(host),
		Port:     tcp.Port,
		State:    d.svc.PowerState().String(),
	})
	if err != nil {
		d.logger.Warn("mDNS advertisement failed", "error", err)
		return
	}
	if err := d.svc.RegisterPowerStateCallback(adv, nil); err != nil {
		d.logger.Warn("advertiser not registered", "error", err)
	}
	d.advertiser = adv
}

func (d *daemon) handleEvent(event service.Event) {
	switch event.Type {
	case service.EventStateChanged:
		d.logger.Info("power state changed", "state", event.State, "reason", event.Reason)
	case service.EventOverTime:
		d.logger.Info("running locks released by timeout", "count", event.Count)
	}
}

// setOutput redirects log output, e.g. to the shell's coordinated writer.
func (d *daemon) setOutput(w io.Writer) { d.output.set(w) }

// Close releases every resource. It is safe on a partially built daemon.
func (d *daemon) Close() {
	if d.advertiser != nil {
		d.advertiser.Stop()
	}
	if d.monitor != nil {
		_ = d.monitor.Close()
	}
	if d.svc != nil {
		if err := d.svc.Close(); err != nil {
			d.logger.Warn("close service", "error", err)
		}
	}
	if d.backends != nil {
		if err := d.backends.close(); err != nil {
			d.logger.Warn("close backend", "error", err)
		}
	}
	if d.audit != nil {
		_ = d.audit.Close()
	}
	if d.fileLog != nil {
		_ = d.fileLog.Close()
	}
}
