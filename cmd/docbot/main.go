package main

import "github.com/thebraudalf/fnb-docbot/internal/cli"

func main() {
	cli.Execute()
}
