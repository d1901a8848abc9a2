package main

import "archaur/internal/cli"

func main() {
	cli.Execute()
}
