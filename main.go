package main

import "logspy/cmd"

func main() {
	cmd.Execute()
}
