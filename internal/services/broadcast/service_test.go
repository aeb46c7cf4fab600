package broadcast

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	payload []byte
	addr    string
}

type mockWriter struct {
	writeToFunc func(p []byte, addr net.Addr) (int, error)
	writes      []write
}

func (m *mockWriter) WriteTo(p []byte, addr net.Addr) (int, error) {
	m.writes = append(m.writes, write{payload: append([]byte(nil), p...), addr: addr.String()})
	if m.writeToFunc != nil {
		return m.writeToFunc(p, addr)
	}
	return len(p), nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func payload() []byte {
	return bytes.Repeat([]byte{0xAB}, 102)
}

func TestSend_Success(t *testing.T) {
	w := &mockWriter{}
	svc := New(testLogger(), w, 9)

	res := svc.Send(payload(), net.ParseIP("192.168.1.255"))

	assert.True(t, res.Sent)
	assert.Equal(t, 102, res.BytesWritten)
	assert.NoError(t, res.Error)
	require.Len(t, w.writes, 1)
	assert.Equal(t, "192.168.1.255:9", w.writes[0].addr)
	assert.Equal(t, payload(), w.writes[0].payload)
}

func TestSend_ShortWrite(t *testing.T) {
	w := &mockWriter{
		writeToFunc: func(p []byte, addr net.Addr) (int, error) {
			return 50, nil
		},
	}
	svc := New(testLogger(), w, 9)

	res := svc.Send(payload(), net.ParseIP("192.168.1.255"))

	assert.False(t, res.Sent)
	assert.Equal(t, 50, res.BytesWritten)
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "short write")
}

func TestSend_Error(t *testing.T) {
	w := &mockWriter{
		writeToFunc: func(p []byte, addr net.Addr) (int, error) {
			return 0, errors.New("network is unreachable")
		},
	}
	svc := New(testLogger(), w, 9)

	res := svc.Send(payload(), net.ParseIP("10.0.0.255"))

	assert.False(t, res.Sent)
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "network is unreachable")
	assert.Contains(t, res.Error.Error(), "10.0.0.255")
}

func TestFanOut_NoDestinations(t *testing.T) {
	w := &mockWriter{}
	svc := New(testLogger(), w, 9)

	result := svc.FanOut(payload(), nil)

	require.Len(t, w.writes, 1)
	assert.Equal(t, "255.255.255.255:9", w.writes[0].addr)
	assert.Equal(t, 1, result.SentCount())
}

func TestFanOut_OnePerDestination(t *testing.T) {
	w := &mockWriter{}
	svc := New(testLogger(), w, 9)

	result := svc.FanOut(payload(), []net.IP{
		net.ParseIP("192.168.1.255"),
		net.ParseIP("10.0.3.255"),
	})

	require.Len(t, w.writes, 2)
	assert.Equal(t, "192.168.1.255:9", w.writes[0].addr)
	assert.Equal(t, "10.0.3.255:9", w.writes[1].addr)
	assert.Equal(t, 2, result.SentCount())
}

func TestFanOut_ContinuesAfterFailure(t *testing.T) {
	w := &mockWriter{
		writeToFunc: func(p []byte, addr net.Addr) (int, error) {
			if addr.String() == "192.168.1.255:9" {
				return 10, nil
			}
			return len(p), nil
		},
	}
	var buf bytes.Buffer
	svc := New(zerolog.New(&buf), w, 9)

	result := svc.FanOut(payload(), []net.IP{
		net.ParseIP("192.168.1.255"),
		net.ParseIP("10.0.3.255"),
	})

	require.Len(t, w.writes, 2)
	require.Len(t, result.Results, 2)
	assert.False(t, result.Results[0].Sent)
	assert.True(t, result.Results[1].Sent)
	assert.Equal(t, 1, result.SentCount())
	assert.Contains(t, buf.String(), "forward failed")
}

func TestFanOut_AllFail(t *testing.T) {
	w := &mockWriter{
		writeToFunc: func(p []byte, addr net.Addr) (int, error) {
			return 0, errors.New("permission denied")
		},
	}
	svc := New(testLogger(), w, 7)

	result := svc.FanOut(payload(), []net.IP{
		net.ParseIP("192.168.1.255"),
		net.ParseIP("10.0.3.255"),
	})

	assert.Len(t, w.writes, 2)
	assert.Equal(t, 0, result.SentCount())
	assert.Equal(t, "10.0.3.255:7", w.writes[1].addr)
}
