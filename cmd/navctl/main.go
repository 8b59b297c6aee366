// navctl runs the storefront's fetch-and-build pipeline against a catalog origin and
// prints the resulting navigation tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
