// Package magic recognises Wake-on-LAN magic packets.
//
// A magic packet is 6 bytes of 0xFF followed by the target MAC address
// repeated 16 times. Validation is deliberately shallow: only the length,
// bytes 0 and 5 of the sync header and byte 6 (which must not be 0xFF) are
// checked. The MAC repetitions are not compared against each other.
package magic

import (
	"errors"
	"fmt"
	"net"
)

const (
	// Size is the length of a magic packet in bytes.
	Size = syncLen + repeats*macLen

	syncLen = 6
	macLen  = 6
	repeats = 16
	syncVal = 0xFF
)

// ErrNotMagicPacket is returned for datagrams that are not magic packets.
var ErrNotMagicPacket = errors.New("not a magic packet")

// Packet is an accepted magic packet. It is never modified after parsing.
type Packet struct {
	raw [Size]byte
}

// Parse checks datagram and returns the packet it holds. The datagram is
// copied, so the caller may reuse its buffer.
func Parse(datagram []byte) (*Packet, error) {
	if len(datagram) != Size {
		return nil, ErrNotMagicPacket
	}
	if datagram[0] != syncVal || datagram[5] != syncVal || datagram[6] == syncVal {
		return nil, ErrNotMagicPacket
	}

	p := &Packet{}
	copy(p.raw[:], datagram)
	return p, nil
}

// Target returns the MAC address at offset 6.
func (p *Packet) Target() net.HardwareAddr {
	mac := make(net.HardwareAddr, macLen)
	copy(mac, p.raw[syncLen:syncLen+macLen])
	return mac
}

// MAC returns the target as lowercase hyphen separated octets.
func (p *Packet) MAC() string {
	t := p.raw[syncLen : syncLen+macLen]
	return fmt.Sprintf("%02x-%02x-%02x-%02x-%02x-%02x", t[0], t[1], t[2], t[3], t[4], t[5])
}

// Bytes returns a copy of the original datagram.
func (p *Packet) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, p.raw[:])
	return b
}
