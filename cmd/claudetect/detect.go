package main

import (
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run detection and print the result",
	Long: `Run the platform detection pipeline and print the result as JSON.
A fresh-enough cached result is served without probing; use redetect to
force a full probe.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}

		result := mgr.Detect(cmd.Context())
		if err := printJSON(result); err != nil {
			return err
		}

		return exitOnFailure(result)
	},
}

var redetectCmd = &cobra.Command{
	Use:   "redetect",
	Short: "Clear the cache and run a full detection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}

		result := mgr.Redetect(cmd.Context())
		if err := printJSON(result); err != nil {
			return err
		}

		return exitOnFailure(result)
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(redetectCmd)
}
