package main

import (
	"os"

	"account-ledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
