package main

import "github.com/suse-edge/support-matrix/cmd"

func main() {
	cmd.Execute()
}
