package main

import (
	"fmt"
	"log/syslog"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "wol-proxy",
	Short: "A relay for Wake-on-LAN magic packets",
	Long: `wol-proxy listens for Wake-on-LAN magic packets on UDP port 9 and
rebroadcasts packets that arrive from outside the local networks onto
every local broadcast domain.

Forward external UDP port 9 on your router to this host to wake machines
on the LAN from anywhere.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(wakeCmd)
}

func setupLogging() {
	// Set output format
	if jsonOutput {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		output.FormatLevel = func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return ""
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// setupSyslog routes all logging to the system log. Syslog stamps the time
// itself, so no timestamp field is added.
func setupSyslog() error {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, "wol-proxy")
	if err != nil {
		return fmt.Errorf("connecting to syslog: %w", err)
	}
	log.Logger = zerolog.New(zerolog.SyslogLevelWriter(w))
	return nil
}

func banner() string {
	return fmt.Sprintf("wol-proxy %s", Version)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
