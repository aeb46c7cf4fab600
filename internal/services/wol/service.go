// Package wol sends Wake-on-LAN magic packets from this host.
package wol

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/mdlayher/wol"
	"github.com/rs/zerolog"
)

// DefaultAddress is used when a wake request names no destination.
const DefaultAddress = "255.255.255.255:9"

// Service defines the interface for Wake-on-LAN operations.
type Service interface {
	Wake(ctx context.Context, req models.WakeRequest) (*models.WakeResult, error)
}

// Client wraps the wol library for mocking.
type Client interface {
	Wake(addr string, mac net.HardwareAddr) error
}

// DefaultClient is the default implementation using mdlayher/wol.
type DefaultClient struct{}

// Wake sends a magic packet for mac to addr.
func (c *DefaultClient) Wake(addr string, mac net.HardwareAddr) error {
	client, err := wol.NewClient()
	if err != nil {
		return fmt.Errorf("failed to create WOL client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Wake(addr, mac); err != nil {
		return fmt.Errorf("failed to send WOL packet: %w", err)
	}

	return nil
}

// Impl implements the WOL Service interface.
type Impl struct {
	wolClient Client
	logger    zerolog.Logger
}

// New creates a new WOL service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		wolClient: &DefaultClient{},
		logger:    logger,
	}
}

// NewWithClient creates a new WOL service with a custom client (for testing).
func NewWithClient(logger zerolog.Logger, wolClient Client) *Impl {
	return &Impl{
		wolClient: wolClient,
		logger:    logger,
	}
}

// Wake sends one magic packet. Failures are reported in the result.
func (s *Impl) Wake(ctx context.Context, req models.WakeRequest) (*models.WakeResult, error) {
	result := &models.WakeResult{}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result, nil
	}

	mac, err := net.ParseMAC(req.MACAddress)
	if err != nil {
		result.Error = fmt.Errorf("invalid MAC address %q: %w", req.MACAddress, err)
		return result, nil
	}

	addr, err := normalizeAddress(req.Address)
	if err != nil {
		result.Error = err
		return result, nil
	}

	s.logger.Info().
		Str("mac", mac.String()).
		Str("addr", addr).
		Msg("sending WOL packet")

	if err := s.wolClient.Wake(addr, mac); err != nil {
		result.Error = err
		return result, nil //nolint:nilerr // error is carried in result
	}

	result.PacketSent = true
	s.logger.Info().Msg("WOL packet sent successfully")

	return result, nil
}

// normalizeAddress fills in the default host and the WoL port.
func normalizeAddress(addr string) (string, error) {
	if addr == "" {
		return DefaultAddress, nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Bare host or IP.
		host, port = addr, "9"
	}
	if host == "" {
		host = "255.255.255.255"
	}

	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("invalid port in address %q", addr)
	}

	return net.JoinHostPort(host, port), nil
}
