// Package registry holds the set of local IPv4 interfaces a relay serves.
package registry

import (
	"net"

	"github.com/KingLoui/wol-proxy/internal/models"
)

// DefaultMax is the usual cap on registered interfaces.
const DefaultMax = 10

// Registry is an ordered, read-only set of local interfaces. It is built
// once before the relay loop starts and never modified afterwards.
type Registry struct {
	interfaces []models.InterfaceInfo
}

// New creates a registry from ifaces in discovery order. Entries beyond max
// are dropped, as are entries without an IPv4 address or netmask.
func New(ifaces []models.InterfaceInfo, max int) *Registry {
	if max <= 0 {
		max = DefaultMax
	}

	r := &Registry{}
	for _, iface := range ifaces {
		if len(r.interfaces) == max {
			break
		}
		ip := iface.Address.To4()
		mask := mask4(iface.Netmask)
		if ip == nil || mask == nil {
			continue
		}
		bcast := iface.Broadcast.To4()
		if bcast == nil {
			bcast = BroadcastAddr(ip, mask)
		}
		r.interfaces = append(r.interfaces, models.InterfaceInfo{
			Name:      iface.Name,
			Address:   ip,
			Netmask:   mask,
			Broadcast: bcast,
		})
	}
	return r
}

// Len returns the number of registered interfaces.
func (r *Registry) Len() int {
	return len(r.interfaces)
}

// Interfaces returns a copy of the registered interfaces.
func (r *Registry) Interfaces() []models.InterfaceInfo {
	out := make([]models.InterfaceInfo, len(r.interfaces))
	copy(out, r.interfaces)
	return out
}

// Broadcasts returns the broadcast address of every registered interface,
// in registration order.
func (r *Registry) Broadcasts() []net.IP {
	out := make([]net.IP, 0, len(r.interfaces))
	for _, iface := range r.interfaces {
		out = append(out, iface.Broadcast)
	}
	return out
}

// IsLocal reports whether ip shares the network prefix of any registered
// interface. An empty registry has no local addresses.
func (r *Registry) IsLocal(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	for _, iface := range r.interfaces {
		if ip4.Mask(iface.Netmask).Equal(iface.Address.Mask(iface.Netmask)) {
			return true
		}
	}
	return false
}

// BroadcastAddr computes the directed broadcast address ip | ^mask.
func BroadcastAddr(ip net.IP, mask net.IPMask) net.IP {
	ip4 := ip.To4()
	m := mask4(mask)
	if ip4 == nil || m == nil {
		return nil
	}
	out := make(net.IP, net.IPv4len)
	for i := range out {
		out[i] = ip4[i] | ^m[i]
	}
	return out
}

func mask4(mask net.IPMask) net.IPMask {
	switch len(mask) {
	case net.IPv4len:
		return mask
	case net.IPv6len:
		return mask[12:]
	}
	return nil
}
