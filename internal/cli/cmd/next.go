package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quenby/photoframed/internal/ipc"
)

func NewNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Switch to the next image",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := ipc.SendNext(); err != nil {
				log.Fatalf("Failed to send 'next' command: %v", err)
			}
			log.Info("Next image command sent")
		},
	}
}
