package main

import "github.com/AlbertDoesNothing/Myriad/cmd/alarm-off/cmd"

func main() {
	cmd.Execute()
}
