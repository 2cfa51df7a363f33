package main

import "github.com/forPelevin/insightly/internal/cli"

func main() {
	cli.Main()
}
