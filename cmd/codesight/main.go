// Binary codesight is the command-line entry point for the analysis engine.
package main

import (
	"fmt"
	"os"

	"github.com/codiehq/codesight/cmd"
	"github.com/codiehq/codesight/internal/modelstore"
)

func main() {
	err := cmd.Execute()

	// Close store connections before deciding the exit code, so a failed
	// command still releases its database handles.
	modelstore.CloseStore()

	if perr := cmd.StopProfiling(); perr != nil {
		fmt.Fprintln(os.Stderr, "⚠️ Could not stop profiling:", perr)
	}

	if err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}
