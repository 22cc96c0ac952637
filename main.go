package main

import "mangasplit/cmd"

func main() {
	cmd.Execute()
}
