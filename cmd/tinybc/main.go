// Command tinybc is the tinybc CLI entry point.
package main

import (
	"os"

	"github.com/thomasrohde/tinybc/cmd/tinybc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
