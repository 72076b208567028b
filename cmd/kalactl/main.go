package main

import "kala/internal/cli"

func main() {
	cli.Execute()
}
