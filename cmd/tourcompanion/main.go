package main

import "github.com/mcoot/tourcompanion/internal/cli"

func main() {
	cli.Execute()
}
