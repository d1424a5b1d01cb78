package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/praagya/vidya/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear local state: tokens, preferences, resume positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("db")
		if path == "" {
			var err error
			path, err = store.DefaultDBPath()
			if err != nil {
				return err
			}
		}

		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Println("Nothing to reset.")
				return nil
			}
			return fmt.Errorf("remove %s: %w", path, err)
		}
		fmt.Println("Local state cleared.")
		return nil
	},
}
