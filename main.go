package main

import "github.com/meesterstump/puzzle-generator/cmd"

func main() {
	cmd.Execute()
}
