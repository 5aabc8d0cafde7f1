package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhsama/claudetect"
)

var execWorkingDir string

var execCmd = &cobra.Command{
	Use:   "exec -- <args>",
	Short: "Detect the CLI and run it with the given arguments",
	Long: `Detect the CLI, then invoke it with the given arguments, wrapped the
way the detected installation requires (natively, through Git Bash, or
inside the owning WSL distribution). Output streams through unmodified.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}

		if result := mgr.Detect(cmd.Context()); !result.Success {
			return exitOnFailure(result)
		}

		res, err := mgr.Execute(cmd.Context(), args, execWorkingDir, claudetect.ExecOptions{})
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, res.Stdout)
		fmt.Fprint(os.Stderr, res.Stderr)

		if !res.Success() {
			return fmt.Errorf("claude exited %d", res.ExitCode)
		}

		return nil
	},
}

func init() {
	execCmd.Flags().StringVarP(&execWorkingDir, "dir", "C", "", "Working directory for the CLI")
	rootCmd.AddCommand(execCmd)
}
