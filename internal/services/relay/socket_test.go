package relay

import (
	"context"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestListen_EnablesBroadcast(t *testing.T) {
	conn, err := Listen(context.Background(), "127.0.0.1", 0)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	sc, ok := conn.(syscall.Conn)
	require.True(t, ok)
	raw, err := sc.SyscallConn()
	require.NoError(t, err)

	var value int
	var sockErr error
	require.NoError(t, raw.Control(func(fd uintptr) {
		value, sockErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST)
	}))
	require.NoError(t, sockErr)
	assert.NotZero(t, value)
}

func TestListen_BindFailure(t *testing.T) {
	first, err := Listen(context.Background(), "127.0.0.1", 0)
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	port := first.LocalAddr().(*net.UDPAddr).Port
	_, err = Listen(context.Background(), "127.0.0.1", port)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't bind socket")
}

func TestListen_ReceivesDatagram(t *testing.T) {
	conn, err := Listen(context.Background(), "127.0.0.1", 0)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	client, err := net.Dial("udp4", conn.LocalAddr().String())
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = client.Write([]byte("ping"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, bufferSize)
	n, from, err := conn.ReadFrom(buf)

	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
	assert.Equal(t, client.LocalAddr().String(), from.String())
}
