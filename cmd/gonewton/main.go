// Command gonewton serves the Newton-Raphson calculator over HTTP and solves
// equations from the command line.
//
// Usage:
//
//	gonewton serve --config gonewton.yaml --port 5000
//	gonewton solve "x^2 - 2" --x0 1 --epsilon 1e-6
//	gonewton diff "sin(x)x"
//	gonewton version
package main

import (
	"errors"
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
