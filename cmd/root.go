package cmd

import (
	"github.com/spf13/cobra"

	"github.com/praagya/vidya/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "vidya",
	Short: "Terminal e-learning client",
	Long:  "Vidya is a terminal client for interactive video courses: gated playback, in-video questions, and synced progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(resolveConfig(cmd), app.Options{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "Learning service base URL (overrides VIDYA_API_URL)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VIDYA_DB)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig layers flags over environment over defaults.
func resolveConfig(cmd *cobra.Command) app.Config {
	cfg := app.ConfigFromEnv()
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		cfg.APIBaseURL = u
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.LogLevel = l
	}
	return cfg
}
