// Command pathman chains path-manipulation operations over a starting
// path.
package main

import (
	"os"

	"github.com/vanandrew/gomemori/internal/pathmancli"
)

func main() {
	os.Exit(pathmancli.Execute())
}
