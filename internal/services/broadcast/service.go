// Package broadcast replays magic packets to local broadcast addresses.
package broadcast

import (
	"fmt"
	"net"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for broadcast operations.
type Service interface {
	Send(payload []byte, destination net.IP) models.SendResult
	FanOut(payload []byte, destinations []net.IP) models.FanOutResult
}

// Writer is the sending half of a packet socket.
type Writer interface {
	WriteTo(p []byte, addr net.Addr) (int, error)
}

// Impl implements the broadcast Service interface.
type Impl struct {
	conn   Writer
	port   int
	logger zerolog.Logger
}

// New creates a broadcast sender writing through conn to the given port.
// conn must have broadcast sending enabled.
func New(logger zerolog.Logger, conn Writer, port int) *Impl {
	return &Impl{
		conn:   conn,
		port:   port,
		logger: logger,
	}
}

// Send writes payload once to destination. Only a complete write counts as
// sent.
func (s *Impl) Send(payload []byte, destination net.IP) models.SendResult {
	result := models.SendResult{Destination: destination}

	n, err := s.conn.WriteTo(payload, &net.UDPAddr{IP: destination, Port: s.port})
	result.BytesWritten = n
	if err != nil {
		result.Error = fmt.Errorf("sending to %s: %w", destination, err)
		return result
	}
	if n != len(payload) {
		result.Error = fmt.Errorf("short write to %s: %d of %d bytes", destination, n, len(payload))
		return result
	}

	result.Sent = true
	return result
}

// FanOut sends payload to every destination, or to the limited broadcast
// address when there are none. A failed destination does not stop the
// others and nothing is retried.
func (s *Impl) FanOut(payload []byte, destinations []net.IP) models.FanOutResult {
	if len(destinations) == 0 {
		destinations = []net.IP{net.IPv4bcast}
	}

	result := models.FanOutResult{Results: make([]models.SendResult, 0, len(destinations))}
	for _, dst := range destinations {
		res := s.Send(payload, dst)
		if res.Sent {
			s.logger.Info().Str("broadcast", dst.String()).Msg("forwarded")
		} else {
			s.logger.Warn().Err(res.Error).Str("broadcast", dst.String()).Msg("forward failed")
		}
		result.Results = append(result.Results, res)
	}
	return result
}
