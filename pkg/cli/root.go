package cli

import (
	"github.com/pedrokiefer/exposure/pkg/config"
	"github.com/spf13/cobra"
)

var (
	//flags
	dryRun     bool
	configPath string
)

// NewRunner returns the exposure command tree.
func NewRunner(version string) *cobra.Command {
	c := newRootCmd()
	c.AddCommand(
		newScanCmd(),
		newServeCmd(),
		newScanAccountCmd(),
		newVersionCmd(version),
	)
	return c
}

func newRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:           "exposure",
		Short:         "exposure grades the external attack surface of a domain",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	f := c.PersistentFlags()
	f.BoolVar(&dryRun, "dry", false, "Dry run, nothing is stored")
	f.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default $"+config.EnvConfigPath+")")
	return c
}
