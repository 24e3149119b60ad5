package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/config"
	"github.com/peguesj/ccem/internal/paths"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a configuration file for problems",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := paths.SettingsFile()
		if len(args) == 1 {
			path = args[0]
		}

		result, err := config.ValidateFile(path)
		if err != nil {
			return err
		}

		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		if result.Valid {
			fmt.Printf("%s is valid.\n", path)
			return nil
		}
		for _, e := range result.Errors {
			fmt.Printf("error: %s: %s\n", e.Field, e.Message)
		}
		return fmt.Errorf("%s has %d validation error(s)", path, len(result.Errors))
	},
}
