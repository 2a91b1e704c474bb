// Command sqlsmith generates random SQL queries from a catalog, runs them
// against a database engine and records the outcomes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mbrukman/sqlsmith/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
