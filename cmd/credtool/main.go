// Command credtool encodes, verifies and validates passwords with the
// configured strategies, and manages accounts in the configured store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
