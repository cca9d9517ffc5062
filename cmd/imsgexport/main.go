package main

import (
	"fmt"
	"os"

	"github.com/adamavenir/imsgexport/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		if !command.IsDeclined(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
