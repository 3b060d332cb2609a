// Command memo wraps a single external command invocation as a cached,
// fingerprinted stage.
package main

import (
	"os"

	"github.com/vanandrew/gomemori/internal/memocli"
)

func main() {
	os.Exit(memocli.Execute())
}
