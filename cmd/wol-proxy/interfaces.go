package main

import (
	"fmt"
	"net"
	"text/tabwriter"

	"github.com/KingLoui/wol-proxy/internal/registry"
	"github.com/KingLoui/wol-proxy/internal/services/discovery"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List the interfaces packets would be relayed to",
	RunE:  listInterfaces,
}

func init() {
	addDiscoveryFlags(interfacesCmd)
}

func listInterfaces(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, err := discovery.New(log.Logger, cfg.Discovery)
	if err != nil {
		return err
	}

	reg := registry.New(svc.Discover(), cfg.Discovery.MaxInterfaces)
	if reg.Len() == 0 {
		return discovery.ErrNoInterfaces
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tNETMASK\tBROADCAST")
	for _, i := range reg.Interfaces() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", i.Name, i.Address, net.IP(i.Netmask), i.Broadcast)
	}
	return w.Flush()
}
