// Package relay runs the receive loop that forwards magic packets arriving
// from outside the local networks onto every local broadcast domain.
package relay

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/KingLoui/wol-proxy/internal/magic"
	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/KingLoui/wol-proxy/internal/registry"
	"github.com/KingLoui/wol-proxy/internal/services/broadcast"
	"github.com/rs/zerolog"
)

// bufferSize is larger than a magic packet so oversized datagrams are
// recognised by their length.
const bufferSize = 256

// Decision is what happened to one received datagram.
type Decision int

const (
	// Discarded datagrams are not magic packets.
	Discarded Decision = iota
	// Suppressed packets came from a local network and already reached it.
	Suppressed
	// Forwarded packets were relayed to the local broadcast addresses.
	Forwarded
)

func (d Decision) String() string {
	switch d {
	case Suppressed:
		return "suppressed"
	case Forwarded:
		return "forwarded"
	}
	return "discarded"
}

// Conn is the receiving half of the listening socket.
type Conn interface {
	ReadFrom(p []byte) (int, net.Addr, error)
	Close() error
}

// Notifier is told about every forwarded packet.
type Notifier interface {
	NotifyRelay(ctx context.Context, relay models.WakeRelay) error
}

// Service defines the interface for the relay engine.
type Service interface {
	Serve(ctx context.Context, conn Conn) error
	Handle(ctx context.Context, datagram []byte, from net.Addr) Decision
}

// Impl implements the relay Service interface.
type Impl struct {
	registry *registry.Registry
	sender   broadcast.Service
	notifier Notifier
	logger   zerolog.Logger
}

// New creates a relay engine. The registry must not change while the engine
// is serving.
func New(logger zerolog.Logger, reg *registry.Registry, sender broadcast.Service) *Impl {
	return &Impl{
		registry: reg,
		sender:   sender,
		logger:   logger,
	}
}

// WithNotifier sets a notifier for forwarded packets.
func (s *Impl) WithNotifier(n Notifier) *Impl {
	s.notifier = n
	return s
}

// Run binds the listening socket and serves until ctx is cancelled or the
// socket fails.
func Run(ctx context.Context, logger zerolog.Logger, listen models.ListenSettings, reg *registry.Registry, notifier Notifier) error {
	conn, err := Listen(ctx, listen.Address, listen.Port)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	logger.Debug().Str("addr", conn.LocalAddr().String()).Msg("socket open")

	engine := New(logger, reg, broadcast.New(logger, conn, listen.Port))
	if notifier != nil {
		engine.WithNotifier(notifier)
	}
	return engine.Serve(ctx, conn)
}

// Serve receives datagrams from conn one at a time until ctx is cancelled,
// which returns nil, or a receive fails, which returns the error. Cancelling
// closes conn.
func (s *Impl) Serve(ctx context.Context, conn Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	s.logger.Info().Msg("ready, waiting for wol packets")

	buf := make([]byte, bufferSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("can't receive data: %w", err)
		}
		s.Handle(ctx, buf[:n], from)
	}
}

// Handle classifies one datagram and forwards it if it is a magic packet
// from a non-local sender.
func (s *Impl) Handle(ctx context.Context, datagram []byte, from net.Addr) Decision {
	pkt, err := magic.Parse(datagram)
	if err != nil {
		s.logger.Debug().Int("size", len(datagram)).Stringer("from", from).Msg("ignoring datagram")
		return Discarded
	}

	ip, port := senderAddr(from)
	sender := net.JoinHostPort(ip.String(), strconv.Itoa(port))

	s.logger.Info().
		Str("mac", pkt.MAC()).
		Str("from", sender).
		Msgf("received magic packet for MAC %s from %s", pkt.MAC(), sender)

	if s.registry.IsLocal(ip) {
		s.logger.Debug().Str("from", sender).Msg("sender is local, not forwarding")
		return Suppressed
	}

	s.logger.Info().Msg("forwarding")
	destinations := s.registry.Broadcasts()
	result := s.sender.FanOut(pkt.Bytes(), destinations)

	if s.notifier != nil {
		relay := models.WakeRelay{
			MAC:    pkt.MAC(),
			Sender: sender,
			Sent:   result.SentCount(),
			Time:   time.Now(),
		}
		for _, res := range result.Results {
			relay.Destinations = append(relay.Destinations, res.Destination.String())
		}
		if err := s.notifier.NotifyRelay(ctx, relay); err != nil {
			s.logger.Warn().Err(err).Msg("relay notification failed")
		}
	}

	return Forwarded
}

func senderAddr(from net.Addr) (net.IP, int) {
	if udp, ok := from.(*net.UDPAddr); ok {
		return udp.IP, udp.Port
	}
	if from == nil {
		return nil, 0
	}
	host, portStr, err := net.SplitHostPort(from.String())
	if err != nil {
		return nil, 0
	}
	port, _ := strconv.Atoi(portStr)
	return net.ParseIP(host), port
}
