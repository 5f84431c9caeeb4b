package main

import "github.com/rfkit-dev/clockplan/cmd/clockplan/cmd"

func main() {
	cmd.Execute()
}
