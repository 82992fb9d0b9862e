// Command salesdash prints dashboard summaries, exports the dataset and
// renders charts without starting the server.
package main

import (
	"os"

	"github.com/bobmcallan/salesdash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
