package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhsama/claudetect/internal/winpath"
)

var pathCmd = &cobra.Command{
	Use:   "path <path>",
	Short: "Translate a path between Windows and WSL forms",
	Long: `Translate a path across the Windows/WSL boundary: drive-letter paths
become /mnt mounts and /mnt mounts become drive-letter paths. WSL-internal
paths and UNC shares have no equivalent and are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		converted, err := winpath.SmartConvert(args[0])
		if err != nil {
			return err
		}

		fmt.Println(converted)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
