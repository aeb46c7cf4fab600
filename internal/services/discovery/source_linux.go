//go:build linux

package discovery

import (
	"fmt"

	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/vishvananda/netlink"
)

// NetlinkSource asks the kernel over netlink and uses the broadcast address
// the kernel reports for each address.
type NetlinkSource struct{}

// Addresses lists the IPv4 addresses of all usable links.
func (NetlinkSource) Addresses() ([]models.InterfaceInfo, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list network links: %w", err)
	}

	var result []models.InterfaceInfo
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil || !usable(attrs.Flags) {
			continue
		}

		addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if addr.IPNet == nil {
				continue
			}
			// Point-to-point links (tun) have no broadcast; it is computed.
			if info, ok := newInfo(attrs.Name, addr.IP, addr.Mask, addr.Broadcast); ok {
				result = append(result, info)
			}
		}
	}
	return result, nil
}

func defaultSource() Source {
	return NetlinkSource{}
}
