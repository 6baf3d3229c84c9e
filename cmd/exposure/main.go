package main

import (
	"fmt"

	"github.com/pedrokiefer/exposure/cmd"
	"github.com/pedrokiefer/exposure/pkg/cli"
)

func main() {
	version := fmt.Sprintf("%s, commit: %s, built: %s", cmd.Version, cmd.Commit, cmd.BuildDate)
	runner := cli.NewRunner(version)
	cmd.Run(runner)
}
