// Command toxedit is the toxicology record edit engine CLI.
package main

import (
	"os"

	"toxedit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
