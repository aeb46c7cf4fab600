package discovery

import (
	"fmt"
	"net"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/KingLoui/wol-proxy/internal/registry"
)

// Source enumerates local IPv4 interface addresses.
type Source interface {
	Addresses() ([]models.InterfaceInfo, error)
}

// NewSource returns the source for a discovery.source setting.
func NewSource(name string) (Source, error) {
	switch name {
	case "", "auto":
		return defaultSource(), nil
	case "net":
		return NetSource{}, nil
	case "netlink":
		return NetlinkSource{}, nil
	}
	return nil, fmt.Errorf("unknown discovery source %q", name)
}

// NetSource uses the portable net.Interfaces API.
type NetSource struct{}

// Addresses lists the IPv4 addresses of all usable interfaces.
func (NetSource) Addresses() ([]models.InterfaceInfo, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}

	var result []models.InterfaceInfo
	for _, ifi := range ifaces {
		if !usable(ifi.Flags) {
			continue
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		result = append(result, ipv4Addrs(ifi.Name, addrs)...)
	}
	return result, nil
}

// usable reports whether an interface with flags can carry relayed packets.
func usable(flags net.Flags) bool {
	return flags&net.FlagUp != 0 && flags&net.FlagLoopback == 0
}

func ipv4Addrs(name string, addrs []net.Addr) []models.InterfaceInfo {
	var result []models.InterfaceInfo
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if info, ok := newInfo(name, ipnet.IP, ipnet.Mask, nil); ok {
			result = append(result, info)
		}
	}
	return result
}

// newInfo builds an InterfaceInfo, computing the broadcast address when the
// platform does not supply one.
func newInfo(name string, ip net.IP, mask net.IPMask, bcast net.IP) (models.InterfaceInfo, bool) {
	ip4 := ip.To4()
	if ip4 == nil || ip4.IsUnspecified() || ip4.IsLoopback() {
		return models.InterfaceInfo{}, false
	}
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return models.InterfaceInfo{}, false
	}
	bcast = bcast.To4()
	if bcast == nil || bcast.IsUnspecified() {
		bcast = registry.BroadcastAddr(ip4, mask)
	}
	return models.InterfaceInfo{
		Name:      name,
		Address:   ip4,
		Netmask:   mask,
		Broadcast: bcast,
	}, true
}
