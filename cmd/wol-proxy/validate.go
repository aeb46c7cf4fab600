package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  `Validate the configuration file, environment and flags without starting the relay.`,
	RunE:  validateConfig,
}

func init() {
	validateCmd.Flags().BoolP("daemon", "d", false, "validate for daemon mode")
	validateCmd.Flags().String("pid-file", "", "pid file written in daemon mode")
	addListenFlags(validateCmd)
	addDiscoveryFlags(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Print configuration summary
	fmt.Fprintln(out, "Configuration is valid!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  Listen: %s:%d\n", cfg.Listen.Address, cfg.Listen.Port)
	fmt.Fprintf(out, "  Mode: %s\n", cfg.Mode())
	if cfg.Daemon.Enabled {
		fmt.Fprintf(out, "  PID file: %s\n", cfg.Daemon.PIDFile)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Discovery:")
	fmt.Fprintf(out, "  Source: %s\n", cfg.Discovery.Source)
	fmt.Fprintf(out, "  Max interfaces: %d\n", cfg.Discovery.MaxInterfaces)
	fmt.Fprintf(out, "  Retry interval: %s\n", cfg.Discovery.RetryInterval)
	fmt.Fprintf(out, "  Settle delay: %s\n", cfg.Discovery.SettleDelay)
	if len(cfg.Discovery.Exclude) > 0 {
		fmt.Fprintf(out, "  Exclude: %s\n", strings.Join(cfg.Discovery.Exclude, ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Optional Features:")
	fmt.Fprintf(out, "  Telegram: %v\n", cfg.Telegram != nil)

	if cfg.Telegram != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Telegram Configuration:")
		fmt.Fprintf(out, "  Chat ID: %s\n", cfg.Telegram.ChatID)
		fmt.Fprintf(out, "  Bot Token: (configured)\n")
	}

	return nil
}
