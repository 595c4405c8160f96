package main

import (
	"os"

	"github.com/roach88/bnfkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
