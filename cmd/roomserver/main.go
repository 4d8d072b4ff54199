// Command roomserver is the process entrypoint: it loads the operator
// config and the five spec-mandated JSON configs, wires the room
// registry/token store/metrics sink into a gameserver.App, and runs the
// TCP session gateway and UDP datagram server side by side until asked
// to shut down. Grounded on the teacher's cmd/gameserver/main.go: config
// loaded first to pick the log level, then an errgroup.WithContext
// supervising one goroutine per listener, with SIGINT/SIGTERM cancelling
// the shared context.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/datagram"
	"github.com/udisondev/lawnmower-room/internal/gameserver"
	"github.com/udisondev/lawnmower-room/internal/metrics"
	"github.com/udisondev/lawnmower-room/internal/roomreg"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/tokenstore"
)

// ProcessConfigPath is the default location of the YAML operator config,
// overridable via the LAWNMOWER_PROCESS_CONFIG environment variable.
const ProcessConfigPath = "config/process.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	procCfgPath := ProcessConfigPath
	if p := os.Getenv("LAWNMOWER_PROCESS_CONFIG"); p != "" {
		procCfgPath = p
	}
	procCfg, err := config.LoadProcessConfig(procCfgPath)
	if err != nil {
		return fmt.Errorf("loading process config: %w", err)
	}

	logLevel := parseLogLevel(procCfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	slog.Info("roomserver starting", "log_level", procCfg.LogLevel)

	serverCfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}
	rolesCfg, err := config.LoadPlayerRolesConfig()
	if err != nil {
		return fmt.Errorf("loading player roles config: %w", err)
	}
	enemiesCfg, err := config.LoadEnemyTypesConfig()
	if err != nil {
		return fmt.Errorf("loading enemy types config: %w", err)
	}
	itemsCfg, err := config.LoadItemsConfig()
	if err != nil {
		return fmt.Errorf("loading items config: %w", err)
	}
	upgradeCfg, err := config.LoadUpgradeConfig()
	if err != nil {
		return fmt.Errorf("loading upgrade config: %w", err)
	}

	metricsSink, closeMetrics, err := buildMetricsSink(ctx, procCfg)
	if err != nil {
		return fmt.Errorf("building metrics sink: %w", err)
	}
	defer closeMetrics()

	tokens := tokenstore.New()
	rooms := roomreg.New()
	app := gameserver.New(tokens, rooms, gameserver.Configs{
		Server:  serverCfg,
		Roles:   rolesCfg,
		Enemies: enemiesCfg,
		Items:   itemsCfg,
		Upgrade: upgradeCfg,
	}, metricsSink)

	udpConn, err := net.ListenPacket("udp", procCfg.UDPBindAddress)
	if err != nil {
		return fmt.Errorf("binding udp %s: %w", procCfg.UDPBindAddress, err)
	}
	datagramServer := datagram.NewServer(udpConn, tokens, app)
	app.SetBroadcaster(datagramServer)

	gw := session.NewGateway(tokens, app)
	tcpLn, err := net.Listen("tcp", procCfg.TCPBindAddress)
	if err != nil {
		return fmt.Errorf("binding tcp %s: %w", procCfg.TCPBindAddress, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		tcpLn.Close()
		udpConn.Close()
		return nil
	})

	g.Go(func() error {
		slog.Info("tcp session gateway listening", "addr", tcpLn.Addr())
		return acceptLoop(gctx, gw, tcpLn)
	})

	g.Go(func() error {
		slog.Info("udp datagram server listening", "addr", udpConn.LocalAddr())
		if err := datagramServer.Run(); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("datagram server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// acceptLoop accepts connections until ln is closed by the shutdown
// goroutine, handing each to its own Gateway-managed Session goroutine.
func acceptLoop(ctx context.Context, gw *session.Gateway, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				slog.Warn("roomserver: accept failed", "error", err)
				continue
			}
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("roomserver: set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("roomserver: set keepalive period failed", "error", err)
			}
		}
		s := gw.Accept(conn)
		go s.Run()
	}
}

// buildMetricsSink picks the file or Postgres backend per
// ProcessConfig.MetricsBackend, running migrations first when Postgres is
// selected. The returned close func is a no-op for the file backend.
func buildMetricsSink(ctx context.Context, procCfg config.ProcessConfig) (*metrics.Sink, func(), error) {
	if procCfg.MetricsBackend != "postgres" {
		return metrics.New(procCfg.MetricsRoot, nil), func() {}, nil
	}

	dsn := procCfg.Postgres.DSN()
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := metrics.RunMigrations(migrateCtx, dsn); err != nil {
		return nil, nil, fmt.Errorf("running metrics migrations: %w", err)
	}

	pg, err := metrics.NewPostgresWriter(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting metrics postgres: %w", err)
	}
	return metrics.New(procCfg.MetricsRoot, pg), pg.Close, nil
}

// parseLogLevel converts a config string to slog.Level, defaulting to
// Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
