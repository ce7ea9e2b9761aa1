package main

import "github.com/mcoot/banglascrabble/internal/cli"

func main() {
	cli.Execute()
}
