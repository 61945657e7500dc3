package main

import (
	"fmt"
	"os"

	"github.com/datamartlab/logmart/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logmart: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
