//go:build !linux

package discovery

import (
	"fmt"

	"github.com/KingLoui/wol-proxy/internal/models"
)

// NetlinkSource is only available on linux.
type NetlinkSource struct{}

// Addresses always fails outside linux.
func (NetlinkSource) Addresses() ([]models.InterfaceInfo, error) {
	return nil, fmt.Errorf("netlink discovery is only available on linux")
}

func defaultSource() Source {
	return NetSource{}
}
