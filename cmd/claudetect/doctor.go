package main

import (
	"github.com/spf13/cobra"

	"github.com/zhsama/claudetect"
)

// doctorReport is the combined diagnostic output.
type doctorReport struct {
	Stats         claudetect.Stats          `json:"stats"`
	Installations []claudetect.Installation `json:"installations"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Print detection state and every usable installation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}

		// Detection first so the stats reflect a live probe rather than
		// whatever the process happened to remember.
		mgr.Detect(cmd.Context())

		return printJSON(doctorReport{
			Stats:         mgr.Stats(),
			Installations: mgr.ListInstallations(cmd.Context()),
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
