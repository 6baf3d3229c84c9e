package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pedrokiefer/exposure/pkg/scan"
	"github.com/spf13/cobra"
)

// Run executes command until it returns or the process is interrupted.
// Invalid domains exit with status 2, every other failure with 1.
func Run(command *cobra.Command) {
	command.Version = fmt.Sprintf("%s, commit: %s, built: %s", Version, Commit, BuildDate)
	if err := run(command); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "exposure: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(command *cobra.Command) error {
	ctx, cancelFunc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFunc()

	return command.ExecuteContext(ctx)
}

func exitCode(err error) int {
	var ie *scan.InputError
	if errors.As(err, &ie) {
		return 2
	}
	return 1
}
