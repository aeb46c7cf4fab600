package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_LoadReader_EmptyConfig(t *testing.T) {
	parser := NewParser()
	cfg, err := parser.LoadReader("")

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Listen.Address)
	assert.Equal(t, 9, cfg.Listen.Port)
	assert.Equal(t, "auto", cfg.Discovery.Source)
	assert.Equal(t, 10, cfg.Discovery.MaxInterfaces)
	assert.Equal(t, 5*time.Second, cfg.Discovery.RetryInterval)
	assert.Equal(t, 1*time.Second, cfg.Discovery.SettleDelay)
	assert.Empty(t, cfg.Discovery.Exclude)
	assert.False(t, cfg.Daemon.Enabled)
	assert.Nil(t, cfg.Telegram)
}

func TestParser_Load_NoFile(t *testing.T) {
	parser := NewParser()
	cfg, err := parser.Load("")

	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Listen.Port)
	require.NoError(t, Validate(cfg))
}

func TestParser_LoadReader_FullConfig(t *testing.T) {
	yaml := `
listen:
  address: "192.168.1.5"
  port: 7

discovery:
  source: netlink
  max_interfaces: 4
  retry_interval: 10s
  settle_delay: 2s
  exclude:
    - docker0
    - virbr0

daemon:
  enabled: true
  pid_file: /run/wol-proxy.pid

telegram:
  bot_token: "123456:ABC"
  chat_id: "-100123456789"
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)

	assert.Equal(t, "192.168.1.5", cfg.Listen.Address)
	assert.Equal(t, 7, cfg.Listen.Port)

	assert.Equal(t, "netlink", cfg.Discovery.Source)
	assert.Equal(t, 4, cfg.Discovery.MaxInterfaces)
	assert.Equal(t, 10*time.Second, cfg.Discovery.RetryInterval)
	assert.Equal(t, 2*time.Second, cfg.Discovery.SettleDelay)
	assert.Equal(t, []string{"docker0", "virbr0"}, cfg.Discovery.Exclude)

	assert.True(t, cfg.Daemon.Enabled)
	assert.Equal(t, "/run/wol-proxy.pid", cfg.Daemon.PIDFile)

	require.NotNil(t, cfg.Telegram)
	assert.Equal(t, "123456:ABC", cfg.Telegram.BotToken)
	assert.Equal(t, "-100123456789", cfg.Telegram.ChatID)
}

func TestParser_LoadReader_SourceIsLowercased(t *testing.T) {
	parser := NewParser()
	cfg, err := parser.LoadReader("discovery:\n  source: NET\n")

	require.NoError(t, err)
	assert.Equal(t, "net", cfg.Discovery.Source)
}

func TestParser_LoadReader_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_TELEGRAM_TOKEN", "env_token")
	t.Setenv("TEST_RUN_DIR", "/var/run")

	yaml := `
daemon:
  enabled: true
  pid_file: "${TEST_RUN_DIR}/wol-proxy.pid"
telegram:
  bot_token: "${TEST_TELEGRAM_TOKEN}"
  chat_id: "42"
`
	parser := NewParser()
	cfg, err := parser.LoadReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, "/var/run/wol-proxy.pid", cfg.Daemon.PIDFile)
	assert.Equal(t, "env_token", cfg.Telegram.BotToken)
}

func TestParser_EnvOverride(t *testing.T) {
	t.Setenv("WOLPROXY_LISTEN_PORT", "4009")

	parser := NewParser()
	cfg, err := parser.LoadReader("listen:\n  port: 9\n")

	require.NoError(t, err)
	assert.Equal(t, 4009, cfg.Listen.Port)
}

func TestParser_BindFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 9, "")
	require.NoError(t, flags.Parse([]string{"--port", "10009"}))

	parser := NewParser()
	require.NoError(t, parser.BindFlag("listen.port", flags.Lookup("port")))

	cfg, err := parser.LoadReader("listen:\n  port: 7\n")

	require.NoError(t, err)
	assert.Equal(t, 10009, cfg.Listen.Port)
}

func TestParser_BindFlag_Missing(t *testing.T) {
	parser := NewParser()
	err := parser.BindFlag("listen.port", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen.port")
}

func TestParser_LoadReader_TelegramMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing bot_token",
			yaml: `
telegram:
  chat_id: "123"
`,
			wantErr: "telegram.bot_token is required",
		},
		{
			name: "missing chat_id",
			yaml: `
telegram:
  bot_token: "abc"
`,
			wantErr: "telegram.chat_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			_, err := parser.LoadReader(tt.yaml)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wol-proxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen:\n  port: 4009\n"), 0o600))

	parser := NewParser()
	cfg, err := parser.LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 4009, cfg.Listen.Port)
}

func TestParser_LoadFile_NotFound(t *testing.T) {
	parser := NewParser()
	_, err := parser.LoadFile("/nonexistent/wol-proxy.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func validConfig() *models.ProxyConfig {
	return &models.ProxyConfig{
		Listen: models.ListenSettings{Address: "0.0.0.0", Port: 9},
		Discovery: models.DiscoverySettings{
			Source:        "auto",
			MaxInterfaces: 10,
			RetryInterval: 5 * time.Second,
			SettleDelay:   time.Second,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *models.ProxyConfig)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *models.ProxyConfig) {},
		},
		{
			name:    "port zero",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Listen.Port = 0 },
			wantErr: "listen.port",
		},
		{
			name:    "port too large",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Listen.Port = 70000 },
			wantErr: "listen.port",
		},
		{
			name:    "unknown source",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Discovery.Source = "wmi" },
			wantErr: "discovery.source",
		},
		{
			name:    "no interfaces allowed",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Discovery.MaxInterfaces = 0 },
			wantErr: "discovery.max_interfaces",
		},
		{
			name:    "zero retry interval",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Discovery.RetryInterval = 0 },
			wantErr: "discovery.retry_interval",
		},
		{
			name:    "negative settle delay",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Discovery.SettleDelay = -time.Second },
			wantErr: "discovery.settle_delay",
		},
		{
			name:    "daemon without pid file",
			mutate:  func(cfg *models.ProxyConfig) { cfg.Daemon.Enabled = true },
			wantErr: "daemon.pid_file",
		},
		{
			name: "daemon with pid file",
			mutate: func(cfg *models.ProxyConfig) {
				cfg.Daemon.Enabled = true
				cfg.Daemon.PIDFile = "/run/wol-proxy.pid"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}
