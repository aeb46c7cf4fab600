package relay

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen opens the UDP socket on address:port with broadcast sending
// enabled, so the same socket both receives and relays.
func Listen(ctx context.Context, address string, port int) (net.PacketConn, error) {
	listenConfig := net.ListenConfig{Control: enableBroadcast}

	addr := net.JoinHostPort(address, strconv.Itoa(port))
	conn, err := listenConfig.ListenPacket(ctx, "udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("can't bind socket on %s: %w", addr, err)
	}
	return conn, nil
}

func enableBroadcast(_, _ string, rawConn syscall.RawConn) error {
	var sockErr error
	if err := rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	}); err != nil {
		return fmt.Errorf("raw control error: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("can't set broadcast socket option: %w", sockErr)
	}
	return nil
}
