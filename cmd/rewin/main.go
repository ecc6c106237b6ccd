package main

import "rewin/internal/cli"

func main() {
	cli.Execute()
}
