// Command energyiq is the conversational household energy calculator.
package main

import (
	"os"

	"github.com/Abhishek8211/energyiq/internal/cli"
	"github.com/Abhishek8211/energyiq/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
