// Command spicec is the Spice batch compiler.
package main

import (
	"os"

	"github.com/spicelang/spicec/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
