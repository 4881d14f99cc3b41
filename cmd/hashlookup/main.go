package main

import "hashlookup/cmd/hashlookup/commands"

func main() {
	commands.Execute()
}
