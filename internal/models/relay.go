package models

import (
	"net"
	"time"
)

// SendResult holds the outcome of one broadcast send.
type SendResult struct {
	Destination  net.IP
	BytesWritten int
	Sent         bool // true only if the whole payload was written
	Error        error
}

// FanOutResult holds the outcome of relaying one packet.
type FanOutResult struct {
	Results []SendResult
}

// SentCount returns how many destinations received the full payload.
func (r FanOutResult) SentCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Sent {
			n++
		}
	}
	return n
}

// WakeRelay describes a magic packet that was forwarded.
type WakeRelay struct {
	MAC          string
	Sender       string
	Destinations []string
	Sent         int
	Time         time.Time
}
