// Command fxconvert converts amounts between the supported currencies from
// the terminal.
package main

import (
	"os"

	"github.com/amirasaad/fxconverter/cmd/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
