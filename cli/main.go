// ABOUTME: Entry point for pypi-capacity CLI
// ABOUTME: Capacity planning for pypiserver containers from the terminal or CI

package main

import (
	"fmt"
	"os"

	"github.com/markalston/pypiserver-capacity/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
