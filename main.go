// main.go
//
// Entry point for vsim. CLI handling lives in the Cobra commands under cmd/.

package main

import (
	"github.com/vsim-dev/vsim/cmd"
)

func main() {
	cmd.Execute()
}
