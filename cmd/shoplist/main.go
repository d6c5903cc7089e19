package main

import (
	"os"

	"github.com/idilsaglam/shoplist/internal/cli"
)

func main() {
	// Everything (flags included) is handled by the CLI runner.
	os.Exit(cli.Run(os.Args[1:], cli.Options{}))
}
