package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/modelcaps/capability"
)

var recordContext []string

var recordCmd = &cobra.Command{
	Use:   "record <model> <capability> <true|false>",
	Short: "Store an empirical observation",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cap, err := capability.Parse(args[1])
		if err != nil {
			return err
		}
		supported, err := strconv.ParseBool(args[2])
		if err != nil {
			return fmt.Errorf("invalid supported value %q (want true or false)", args[2])
		}
		ctx, err := parseContext(recordContext)
		if err != nil {
			return err
		}
		d, err := newDetector()
		if err != nil {
			return err
		}
		return d.Record(args[0], cap, ctx, supported)
	},
}

func init() {
	recordCmd.Flags().StringArrayVar(&recordContext, "context", nil, "Context pair key=value (repeatable)")
	rootCmd.AddCommand(recordCmd)
}
