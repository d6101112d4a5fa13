package main

import (
	"os"

	"github.com/lootledger/lootledger/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
