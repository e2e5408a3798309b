package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quenby/photoframed/internal/cli/cmd/utils"
	"github.com/quenby/photoframed/internal/ipc"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get photoframed status",
		Long:  `Returns the current status of the photoframed process.`,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.GetStatus()
			if err != nil {
				log.Errorf("Error sending command: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
