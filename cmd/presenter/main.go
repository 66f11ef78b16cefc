// Command presenter exercises the presenter runtime from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/presenter/cmd/presenter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
