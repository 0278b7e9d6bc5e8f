package main

import (
	"os"

	"github.com/solardome/policyforge/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
