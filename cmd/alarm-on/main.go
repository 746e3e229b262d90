package main

import "github.com/AlbertDoesNothing/Myriad/cmd/alarm-on/cmd"

func main() {
	cmd.Execute()
}
