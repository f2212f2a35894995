package main

import (
	"github.com/AzielCF/az-settings/cmd"
)

func main() {
	cmd.Execute()
}
