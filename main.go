package main

import "github.com/kiesman99/aoimatrix/cmd"

func main() {
	cmd.Execute()
}
