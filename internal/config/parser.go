// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for a relay without any configuration file.
const (
	DefaultListenAddress = "0.0.0.0"
	DefaultListenPort    = 9
	DefaultSource        = "auto"
	DefaultMaxInterfaces = 10
	DefaultRetryInterval = 5 * time.Second
	DefaultSettleDelay   = 1 * time.Second
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("wolproxy")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen.address", DefaultListenAddress)
	v.SetDefault("listen.port", DefaultListenPort)
	v.SetDefault("discovery.source", DefaultSource)
	v.SetDefault("discovery.max_interfaces", DefaultMaxInterfaces)
	v.SetDefault("discovery.retry_interval", DefaultRetryInterval)
	v.SetDefault("discovery.settle_delay", DefaultSettleDelay)
	v.SetDefault("daemon.enabled", false)

	return &Parser{v: v}
}

// BindFlag lets a command-line flag override the given key.
func (p *Parser) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	if err := p.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("binding flag %s: %w", flag.Name, err)
	}
	return nil
}

// Load reads the config file at path, or only defaults, environment and
// flags when path is empty.
func (p *Parser) Load(path string) (*models.ProxyConfig, error) {
	if path == "" {
		return p.parse()
	}
	return p.LoadFile(path)
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.ProxyConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.ProxyConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.ProxyConfig, error) {
	cfg := &models.ProxyConfig{}

	cfg.Listen = models.ListenSettings{
		Address: p.v.GetString("listen.address"),
		Port:    p.v.GetInt("listen.port"),
	}
	if cfg.Listen.Address == "" {
		cfg.Listen.Address = DefaultListenAddress
	}

	cfg.Discovery = models.DiscoverySettings{
		Source:        strings.ToLower(p.v.GetString("discovery.source")),
		MaxInterfaces: p.v.GetInt("discovery.max_interfaces"),
		RetryInterval: p.v.GetDuration("discovery.retry_interval"),
		SettleDelay:   p.v.GetDuration("discovery.settle_delay"),
		Exclude:       p.v.GetStringSlice("discovery.exclude"),
	}
	if cfg.Discovery.Source == "" {
		cfg.Discovery.Source = DefaultSource
	}

	cfg.Daemon = models.DaemonSettings{
		Enabled: p.v.GetBool("daemon.enabled"),
		PIDFile: p.expandEnv(p.v.GetString("daemon.pid_file")),
	}

	// Parse optional Telegram config.
	if p.v.IsSet("telegram") {
		cfg.Telegram = &models.TelegramConfig{
			BotToken: p.expandEnv(p.v.GetString("telegram.bot_token")),
			ChatID:   p.expandEnv(p.v.GetString("telegram.chat_id")),
		}

		if cfg.Telegram.BotToken == "" {
			return nil, fmt.Errorf("telegram.bot_token is required when telegram is configured")
		}
		if cfg.Telegram.ChatID == "" {
			return nil, fmt.Errorf("telegram.chat_id is required when telegram is configured")
		}
	}

	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.ProxyConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Listen.Port < 1 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be between 1 and 65535, got %d", cfg.Listen.Port)
	}

	validSources := map[string]bool{"auto": true, "net": true, "netlink": true}
	if !validSources[cfg.Discovery.Source] {
		return fmt.Errorf("discovery.source must be one of: auto, net, netlink")
	}

	if cfg.Discovery.MaxInterfaces < 1 {
		return fmt.Errorf("discovery.max_interfaces must be at least 1")
	}

	if cfg.Discovery.RetryInterval <= 0 {
		return fmt.Errorf("discovery.retry_interval must be positive")
	}

	if cfg.Discovery.SettleDelay < 0 {
		return fmt.Errorf("discovery.settle_delay must not be negative")
	}

	if cfg.Daemon.Enabled && cfg.Daemon.PIDFile == "" {
		return fmt.Errorf("daemon.pid_file is required in daemon mode")
	}

	return nil
}
