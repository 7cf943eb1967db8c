package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vahti-ci/vahti/cmd/vahti/internal/clierr"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vahti",
		Short: "Vahti is a single-shot continuous integration poller.",
		Long: `Vahti checks a version-controlled source tree for new commits, runs a test
command when changes are detected, and notifies the team when the test outcome
flips between success and failure. One invocation performs one check and exits;
scheduling is left to cron or a similar job runner.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
