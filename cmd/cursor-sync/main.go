package main

import (
	"os"

	"cursor-sync/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
