package main

import (
	"github.com/warp/inventory-sync/cli"
)

func main() {
	cli.Execute()
}
