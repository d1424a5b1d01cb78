package cmd

import (
	"github.com/spf13/cobra"

	"github.com/praagya/vidya/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play <video-id>",
	Short: "Open a video directly, skipping the course browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(resolveConfig(cmd), app.Options{StartVideoID: args[0]})
	},
}
