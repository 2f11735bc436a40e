package main

import "chors/internal/cli"

func main() {
	cli.Execute()
}
