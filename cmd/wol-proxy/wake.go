package main

import (
	"github.com/KingLoui/wol-proxy/internal/models"
	"github.com/KingLoui/wol-proxy/internal/services/wol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var wakeAddr string

var wakeCmd = &cobra.Command{
	Use:   "wake <mac>",
	Short: "Send a magic packet",
	Long: `Send a Wake-on-LAN magic packet for <mac>. Point --addr at the public
address of a router forwarding to wol-proxy to test the relay.`,
	Args: cobra.ExactArgs(1),
	RunE: sendWake,
}

func init() {
	wakeCmd.Flags().StringVarP(&wakeAddr, "addr", "a", wol.DefaultAddress, "destination host[:port]")
}

func sendWake(cmd *cobra.Command, args []string) error {
	svc := wol.New(log.Logger)

	result, err := svc.Wake(cmd.Context(), models.WakeRequest{
		MACAddress: args[0],
		Address:    wakeAddr,
	})
	if err != nil {
		return err
	}
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("wake failed")
		return result.Error
	}
	return nil
}
