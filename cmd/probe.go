package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/praagya/vidya/internal/source"
)

var probeCmd = &cobra.Command{
	Use:   "probe <media-url>",
	Short: "Run stream diagnostics against a media URL",
	Long:  "Resolves the playback chain for a URL, validates reachability, and for HLS prints the parsed manifest variants.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := args[0]

		sources, err := source.Resolve(rawURL)
		if err != nil {
			return err
		}

		fmt.Println("Playback chain:")
		for i, src := range sources {
			fmt.Printf("  %d. [%s] %s\n", i+1, src.Format, src.URI)
			fmt.Printf("     buffer: min %s, max %s\n",
				src.Hints.MinBuffer, src.Hints.MaxBuffer)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		checker := source.NewChecker(nil)
		primary := sources[0]

		report := checker.ValidateStream(ctx, primary.URI)
		if report.IsValid {
			fmt.Println("\nPrimary source: reachable")
		} else {
			fmt.Printf("\nPrimary source: UNREACHABLE (%s)\n", report.Message)
			return nil
		}

		if primary.Format != source.FormatHLS {
			return nil
		}

		manifest, err := checker.ParseManifest(ctx, primary.URI)
		if err != nil {
			fmt.Printf("Manifest parse failed: %v\n", err)
			return nil
		}
		if !manifest.IsMaster {
			fmt.Println("Media playlist (no variants).")
			return nil
		}
		fmt.Printf("Master playlist with %d variants:\n", len(manifest.Variants))
		for _, v := range manifest.Variants {
			fmt.Printf("  %-12s %8d bps  %s\n", v.Resolution, v.Bandwidth, v.URI)
		}
		return nil
	},
}

func init() {
	probeCmd.SetContext(context.Background())
}
