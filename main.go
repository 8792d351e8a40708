// Command monetizer compiles, serves and exports monetized 404 pages.
package main

import (
	"os"

	"github.com/fourohfour/monetizer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
