package models

// WakeRequest describes a magic packet to send from this host.
type WakeRequest struct {
	MACAddress string
	Address    string // host:port, e.g. "203.0.113.7:9"
}

// WakeResult holds the result of a Wake-on-LAN send.
type WakeResult struct {
	PacketSent bool
	Error      error
}
