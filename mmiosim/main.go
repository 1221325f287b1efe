// Command mmiosim runs driver bring-up sequences against a simulated register
// space.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/mmiosim/mmiosim/cmd"
)

func main() {
	atexit.Exit(cmd.Execute())
}
