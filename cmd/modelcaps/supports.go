package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/modelcaps/capability"
)

var supportsContext []string

var supportsCmd = &cobra.Command{
	Use:   "supports <model> <capability>",
	Short: "Resolve whether a model supports a capability",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cap, err := capability.Parse(args[1])
		if err != nil {
			return err
		}
		ctx, err := parseContext(supportsContext)
		if err != nil {
			return err
		}
		d, err := newDetector()
		if err != nil {
			return err
		}
		supported, err := d.Supports(args[0], cap, ctx)
		if err != nil {
			return err
		}
		fmt.Println(strconv.FormatBool(supported))
		return nil
	},
}

var lookupContext []string

var lookupCmd = &cobra.Command{
	Use:   "lookup <model> <capability>",
	Short: "Consult only the empirical cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cap, err := capability.Parse(args[1])
		if err != nil {
			return err
		}
		ctx, err := parseContext(lookupContext)
		if err != nil {
			return err
		}
		d, err := newDetector()
		if err != nil {
			return err
		}
		supported, ok, err := d.Lookup(args[0], cap, ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("absent")
			return nil
		}
		fmt.Println(strconv.FormatBool(supported))
		return nil
	},
}

func init() {
	supportsCmd.Flags().StringArrayVar(&supportsContext, "context", nil, "Context pair key=value (repeatable)")
	lookupCmd.Flags().StringArrayVar(&lookupContext, "context", nil, "Context pair key=value (repeatable)")
	rootCmd.AddCommand(supportsCmd)
	rootCmd.AddCommand(lookupCmd)
}
