package main

import "github.com/brogergvhs/nelo/cmd"

func main() {
	cmd.Execute()
}
