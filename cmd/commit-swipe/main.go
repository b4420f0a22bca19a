package main

import "github.com/example/commit-swipe/internal/cli"

func main() {
	cli.Execute()
}
