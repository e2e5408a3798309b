package cmd

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/quenby/photoframed/internal/cli/cmd/utils"
	"github.com/quenby/photoframed/internal/ipc"
)

func NewLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [image.jpg]",
		Short: "Show a specific image immediately",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// The daemon resolves the path in its own working directory,
			// so send an absolute one.
			path, err := filepath.Abs(utils.CanonicalPath(args[0]))
			if err != nil {
				log.Fatalf("Failed to resolve %v: %v", args[0], err)
			}
			if _, err := ipc.SendLoad(path); err != nil {
				log.Fatalf("Failed to send 'load' command: %v", err)
			}
			log.Infof("Loaded %v", path)
		},
	}
}
