package main

import "monu/internal/cli"

func main() {
	cli.Execute()
}
