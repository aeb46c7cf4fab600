package main

import (
	"fmt"
	"path/filepath"

	"github.com/KingLoui/wol-proxy/internal/config"
	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"listen":   "listen.address",
	"port":     "listen.port",
	"source":   "discovery.source",
	"exclude":  "discovery.exclude",
	"daemon":   "daemon.enabled",
	"pid-file": "daemon.pid_file",
}

// loadConfig reads the config file (if any), applies environment and flags
// of cmd, and validates the result.
func loadConfig(cmd *cobra.Command) (*models.ProxyConfig, error) {
	parser := config.NewParser()

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := parser.BindFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	cfg, err := parser.Load(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return nil, err
	}

	// The daemon changes to / before writing its pid file.
	if cfg.Daemon.PIDFile != "" {
		abs, err := filepath.Abs(cfg.Daemon.PIDFile)
		if err != nil {
			return nil, fmt.Errorf("resolving pid file path: %w", err)
		}
		cfg.Daemon.PIDFile = abs
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return nil, err
	}

	return cfg, nil
}

func addListenFlags(cmd *cobra.Command) {
	cmd.Flags().String("listen", config.DefaultListenAddress, "address to listen on")
	cmd.Flags().IntP("port", "p", config.DefaultListenPort, "UDP port to listen on and relay to")
}

func addDiscoveryFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", config.DefaultSource, "interface discovery source: auto, net or netlink")
	cmd.Flags().StringSlice("exclude", nil, "interface names to ignore")
}
