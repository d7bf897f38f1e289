package main

import (
	"os"

	"github.com/odellis/hireflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
