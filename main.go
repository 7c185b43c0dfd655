package main

import "github.com/helix-tools/patchrank/cmd"

func main() {
	cmd.Execute()
}
