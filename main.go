// Command counter-sim simulates a multi-server service counter.
// Subcommands and flags live in package cmd.
package main

import "github.com/counter-sim/counter-sim/cmd"

func main() {
	cmd.Execute()
}
