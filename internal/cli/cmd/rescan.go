package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quenby/photoframed/internal/ipc"
)

func NewRescanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Rescan the images directory",
		Long:  `Tells the daemon to re-read the images directory and refresh its rotation.`,
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := ipc.SendRescan(); err != nil {
				log.Fatalf("Failed to send 'rescan' command: %v", err)
			}
			log.Info("Rescan command sent")
		},
	}
}
