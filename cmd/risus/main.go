// Command risus computes exact success odds for RISUS dice pools.
package main

import (
	"os"

	"github.com/cory-johannsen/risus/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
