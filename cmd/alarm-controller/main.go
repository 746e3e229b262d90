package main

import "github.com/AlbertDoesNothing/Myriad/cmd/alarm-controller/cmd"

func main() {
	cmd.Execute()
}
