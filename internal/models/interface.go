package models

import (
	"fmt"
	"net"
)

// InterfaceInfo describes one local IPv4 interface address.
type InterfaceInfo struct {
	Name      string
	Address   net.IP
	Netmask   net.IPMask
	Broadcast net.IP
}

// String renders the interface the way it is logged at discovery.
func (i InterfaceInfo) String() string {
	return fmt.Sprintf("IP %s netmask %s broadcast %s", i.Address, net.IP(i.Netmask), i.Broadcast)
}
