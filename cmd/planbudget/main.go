package main

import "github.com/practicehq/planbudget/internal/cli"

func main() {
	cli.Execute()
}
