package main

import "github.com/localnerve/videohost/cmd/videohostctl/commands"

func main() {
	commands.Execute()
}
