package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peguesj/ccem/internal/config"
	"github.com/peguesj/ccem/internal/diff"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two configuration files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := config.Read(args[0])
		if err != nil {
			return err
		}
		b, err := config.Read(args[1])
		if err != nil {
			return err
		}

		d := diff.Compute(a, b)
		if d.Identical {
			fmt.Println("Configurations are identical.")
			return nil
		}
		for _, p := range d.Added {
			fmt.Printf("  + %s\n", p)
		}
		for _, p := range d.Removed {
			fmt.Printf("  - %s\n", p)
		}
		for _, c := range d.Modified {
			fmt.Printf("  ~ %s: %s -> %s\n", c.Path, formatValue(c.Before), formatValue(c.After))
		}
		fmt.Printf("%d added, %d removed, %d modified.\n",
			len(d.Added), len(d.Removed), len(d.Modified))
		return nil
	},
}
