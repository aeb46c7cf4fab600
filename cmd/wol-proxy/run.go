package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/KingLoui/wol-proxy/internal/daemon"
	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/KingLoui/wol-proxy/internal/services/discovery"
	"github.com/KingLoui/wol-proxy/internal/services/relay"
	"github.com/KingLoui/wol-proxy/internal/services/telegram"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [pid-file]",
	Short: "Relay magic packets until stopped",
	Long: `Relay Wake-on-LAN magic packets:
1. Discover local IPv4 interfaces (a daemon waits until one is up)
2. Listen on UDP port 9
3. For each magic packet from a non-local sender, rebroadcast it to
   every local broadcast address

With --daemon the process detaches, writes its pid to the pid file
(given with --pid-file or as the only argument) and logs to syslog.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runProxy,
}

func init() {
	runCmd.Flags().BoolP("daemon", "d", false, "run in the background and log to syslog")
	runCmd.Flags().String("pid-file", "", "pid file written in daemon mode")
	addListenFlags(runCmd)
	addDiscoveryFlags(runCmd)
}

//nolint:gocognit // startup has several fatal steps
func runProxy(cmd *cobra.Command, args []string) error {
	if daemon.IsChild() {
		if err := setupSyslog(); err != nil {
			return err
		}
	}

	if len(args) == 1 {
		if err := cmd.Flags().Set("pid-file", args[0]); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mode := cfg.Mode()
	if mode == models.Daemon && !daemon.IsChild() {
		pid, err := daemon.Detach(os.Args[1:])
		if err != nil {
			log.Error().Err(err).Msg("failed to start daemon")
			return err
		}
		log.Info().Int("pid", pid).Str("pid_file", cfg.Daemon.PIDFile).Msg("daemon started")
		return nil
	}

	if mode == models.Daemon {
		if err := daemon.Prepare(); err != nil {
			log.Error().Err(err).Msg("failed to prepare daemon")
			return err
		}
		pidFile, err := daemon.WritePIDFile(cfg.Daemon.PIDFile)
		if err != nil {
			log.Error().Err(err).Str("pid_file", cfg.Daemon.PIDFile).Msg("can't create pidfile")
			return err
		}
		defer func() {
			if err := pidFile.Remove(); err != nil {
				log.Warn().Err(err).Msg("failed to remove pidfile")
			}
		}()
		log.Info().Msgf("running as daemon: %s", banner())
	} else {
		log.Info().Msg(banner())
	}

	logger := log.Logger

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msgf("signal %s received, closing wol-proxy", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	discoverySvc, err := discovery.New(logger, cfg.Discovery)
	if err != nil {
		logger.Error().Err(err).Msg("invalid discovery source")
		return err
	}

	reg, err := discoverySvc.Startup(ctx, mode)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logger.Error().Err(err).Msg("interface discovery failed")
		return err
	}

	var notifier relay.Notifier
	if cfg.Telegram != nil {
		notifier = telegram.NewNotifier(telegram.New(logger), *cfg.Telegram)
	}

	if err := relay.Run(ctx, logger, cfg.Listen, reg, notifier); err != nil {
		logger.Error().Err(err).Msg("relay stopped")
		return err
	}

	return nil
}
