package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the empirical cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDetector()
		if err != nil {
			return err
		}
		return d.Clear()
	},
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Count empirical cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDetector()
		if err != nil {
			return err
		}
		n, err := d.Size()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(sizeCmd)
}
