// Command workbench manages a crafting recipe store from the command line.
package main

import "github.com/mesh-intelligence/workbench/internal/cli"

func main() {
	cli.Execute()
}
