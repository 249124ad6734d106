package main

import "github.com/reelcap/reelcap/cmd/reelcap/commands"

func main() {
	commands.Execute()
}
