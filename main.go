package main

import "github.com/feebook/feebook/cmd"

func main() {
	cmd.Execute()
}
