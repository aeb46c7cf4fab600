// Package models contains the data structures used throughout wol-proxy.
package models

import "time"

// ProxyConfig holds the complete configuration for a relay run.
type ProxyConfig struct {
	Listen    ListenSettings
	Discovery DiscoverySettings
	Daemon    DaemonSettings
	Telegram  *TelegramConfig // nil if not configured
}

// ListenSettings defines the listening socket.
type ListenSettings struct {
	Address string
	Port    int // also the destination port of relayed packets
}

// DiscoverySettings defines how local interfaces are found.
type DiscoverySettings struct {
	Source        string // "auto", "net" or "netlink"
	MaxInterfaces int
	RetryInterval time.Duration // daemon mode only
	SettleDelay   time.Duration // daemon mode only
	Exclude       []string
}

// DaemonSettings defines background operation.
type DaemonSettings struct {
	Enabled bool
	PIDFile string
}

// RunMode selects foreground or daemon operation.
type RunMode int

const (
	// Foreground runs attached to the terminal and logs to stdout.
	Foreground RunMode = iota
	// Daemon runs detached and logs to syslog.
	Daemon
)

func (m RunMode) String() string {
	if m == Daemon {
		return "daemon"
	}
	return "foreground"
}

// Mode returns the run mode selected by the configuration.
func (c ProxyConfig) Mode() RunMode {
	if c.Daemon.Enabled {
		return Daemon
	}
	return Foreground
}
