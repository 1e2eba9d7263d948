package main

import "github.com/forPelevin/vidarticle/internal/cli"

func main() {
	cli.Main()
}
