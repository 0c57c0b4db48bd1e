package main

import (
	"os"

	"github.com/adanyl0v/go-todo-sync/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
