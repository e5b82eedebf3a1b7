// ctrlviz - Robot Controller Log Visualizer
//
// ctrlviz plots the force/torque, joint torque and pose/twist logs written
// by a robot controller, and redraws them whenever the logs change.
package main

import (
	"os"

	"github.com/ctrlviz/ctrlviz/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
