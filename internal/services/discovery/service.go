// Package discovery finds the local IPv4 interfaces a relay broadcasts to.
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/KingLoui/wol-proxy/internal/registry"
	"github.com/rs/zerolog"
)

// ErrNoInterfaces is returned when a foreground start finds no interface.
var ErrNoInterfaces = errors.New("found no interface")

// Service defines the interface for interface discovery.
type Service interface {
	Discover() []models.InterfaceInfo
	Startup(ctx context.Context, mode models.RunMode) (*registry.Registry, error)
}

// Impl implements the discovery Service interface.
type Impl struct {
	source   Source
	settings models.DiscoverySettings
	exclude  map[string]bool
	logger   zerolog.Logger
}

// New creates a discovery service for the configured source.
func New(logger zerolog.Logger, settings models.DiscoverySettings) (*Impl, error) {
	source, err := NewSource(settings.Source)
	if err != nil {
		return nil, err
	}
	return NewWithSource(logger, settings, source), nil
}

// NewWithSource creates a discovery service with a custom source (for testing).
func NewWithSource(logger zerolog.Logger, settings models.DiscoverySettings, source Source) *Impl {
	if settings.MaxInterfaces <= 0 {
		settings.MaxInterfaces = registry.DefaultMax
	}

	exclude := make(map[string]bool, len(settings.Exclude))
	for _, name := range settings.Exclude {
		exclude[name] = true
	}

	return &Impl{
		source:   source,
		settings: settings,
		exclude:  exclude,
		logger:   logger,
	}
}

// Discover enumerates the local interfaces once. A failing source yields an
// empty result; the caller decides whether that is fatal.
func (s *Impl) Discover() []models.InterfaceInfo {
	found, err := s.source.Addresses()
	if err != nil {
		s.logger.Warn().Err(err).Msg("interface discovery failed")
		return nil
	}

	var result []models.InterfaceInfo
	for _, info := range found {
		if s.exclude[info.Name] {
			s.logger.Debug().Str("interface", info.Name).Msg("skipping excluded interface")
			continue
		}
		if len(result) == s.settings.MaxInterfaces {
			s.logger.Warn().
				Int("max", s.settings.MaxInterfaces).
				Str("interface", info.Name).
				Msg("interface limit reached, ignoring remaining interfaces")
			break
		}

		s.logger.Info().Str("interface", info.Name).Msg(info.String())
		result = append(result, info)
	}

	return result
}

// Startup builds the registry according to the run mode. In the foreground
// an empty discovery is fatal. A daemon retries until an interface appears,
// because interfaces may come up only after the daemon was started at boot.
func (s *Impl) Startup(ctx context.Context, mode models.RunMode) (*registry.Registry, error) {
	if mode == models.Foreground {
		ifaces := s.Discover()
		if len(ifaces) == 0 {
			return nil, ErrNoInterfaces
		}
		return registry.New(ifaces, s.settings.MaxInterfaces), nil
	}

	ifaces, err := s.waitForInterfaces(ctx)
	if err != nil {
		return nil, err
	}
	return registry.New(ifaces, s.settings.MaxInterfaces), nil
}

func (s *Impl) waitForInterfaces(ctx context.Context) ([]models.InterfaceInfo, error) {
	s.logger.Info().Msg("waiting for interfaces to get up and running")

	for {
		ifaces := s.Discover()
		if len(ifaces) > 0 {
			if err := sleep(ctx, s.settings.SettleDelay); err != nil {
				return nil, err
			}
			return ifaces, nil
		}

		s.logger.Debug().
			Str("retry_in", s.settings.RetryInterval.String()).
			Msg("no interface found yet")

		if err := sleep(ctx, s.settings.RetryInterval); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
