package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/config"
	"github.com/xfce-go/xsmd/internal/domain"
	"github.com/xfce-go/xsmd/internal/history"
	"github.com/xfce-go/xsmd/internal/ipc"
	"github.com/xfce-go/xsmd/internal/manager"
	"github.com/xfce-go/xsmd/internal/sessionfile"
	"github.com/xfce-go/xsmd/internal/shutdown"
	"github.com/xfce-go/xsmd/internal/startup"
	"github.com/xfce-go/xsmd/pkg/logger"
)

var sessionName string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the session manager",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&sessionName, "session", "", "session name to load (default: the only persisted one, otherwise the first by name)")
}

// runRun wires every collaborator the Manager depends on — the Startup
// Orchestrator, the Session File Codec, the Shutdown Driver chain, the
// history audit store, and the IPC surface — and drives the Manager's
// Loop until it shuts down. No collaborator reaches into a process-global;
// this function is the one place they're all constructed and handed to
// the Manager.
func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.LoadFromEnvironment(mustLoadConfig())
	if socketPath != "" {
		cfg.IPCSocketPath = socketPath
	}

	log := logger.New("manager", cfg.LogLevel)

	loop := manager.NewLoop()
	tp := manager.SerializingTimeProvider{Base: manager.RealTime{}, Loop: loop}

	display := os.Getenv("DISPLAY")
	codec := sessionfile.New(cfg.SessionFilePath(display), cfg.FailsafeSearchPath, log.WithComponent("sessionfile"))

	launcher := startup.New(log.WithComponent("startup"), tp, cfg.StartupTimeout)

	shutdownChain := buildShutdownChain(log.WithComponent("shutdown"))

	var notifiers arch.MultiNotifier

	var historyStore *history.Store
	if cfg.CheckpointDir != "" {
		hs, err := history.Open(filepath.Join(cfg.CheckpointDir, "history.kuzu"), log.WithComponent("history"))
		if err != nil {
			log.Warn("history store unavailable, continuing without audit trail", "error", err)
		} else {
			historyStore = hs
			defer historyStore.Close()
			notifiers = append(notifiers, historyStore)
		}
	}

	mgrCfg := manager.Config{
		SaveTimeout:    cfg.SaveTimeout,
		DieTimeout:     cfg.DieTimeout,
		StartupTimeout: cfg.StartupTimeout,
		CheckpointDir:  cfg.CheckpointDir,
		ChooserEnabled: cfg.ChooserEnabled,
	}

	// ipc.Server needs the Manager to route requests to; the Manager needs
	// its Notifier at construction, and the IPC server is one of its
	// notified observers. A LateBoundNotifier breaks that cycle.
	notify := &arch.LateBoundNotifier{}
	mgr := manager.New(mgrCfg, log, tp, notify, launcher, nil, nil, codec, shutdown.CommandRunner{})
	ipcServer := ipc.NewServer(cfg.IPCSocketPath, mgr, loop, log.WithComponent("ipc"))
	notifiers = append(notifiers, ipcServer)
	notify.Set(notifiers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sig
		log.Info("received termination signal, requesting logout shutdown")
		loop.Submit(func() { _ = mgr.RequestShutdown(domain.ShutdownLogout) })
	}()

	if err := mgr.LoadSession(ctx, sessionName); err != nil {
		return err
	}

	loopDone := make(chan struct{})
	go loop.Run(ctx, loopDone)

	loop.Submit(mgr.LaunchPending)

	ipcDone := make(chan error, 1)
	go func() { ipcDone <- ipcServer.ListenAndServe(ctx) }()

	select {
	case <-mgr.Done():
		log.Info("manager finished, executing shutdown action", "action", mgr.PendingShutdownType())
		execCtx, execCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer execCancel()
		if err := shutdownChain.Execute(execCtx, mgr.PendingShutdownType()); err != nil {
			log.Error("shutdown backend failed", "error", err)
		}
		cancel()
	case err := <-ipcDone:
		if err != nil {
			log.Error("ipc server stopped unexpectedly", "error", err)
		}
	}

	close(loopDone)
	return nil
}

func buildShutdownChain(log arch.Logger) *shutdown.Chain {
	backends := []arch.ShutdownBackend{}
	if logind, err := shutdown.NewLogind(); err == nil {
		backends = append(backends, logind)
	} else {
		log.Warn("systemd-logind unavailable, falling back in the shutdown chain", "error", err)
	}
	backends = append(backends, shutdown.NewSudoHelper("/usr/lib/xsmd/xsmd-shutdown-helper"))
	backends = append(backends, shutdown.NoOp{})
	return shutdown.NewChain(backends...)
}

func mustLoadConfig() *config.Config {
	cfg, err := config.LoadDaemonConfig(configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	return cfg
}
