// Package main implements the tfinvite command, a small CLI around the
// itc session protocol for managing TestFlight beta testers.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// Exit codes reported to the shell.
const (
	exitUsage      = 1
	exitNoPassword = 2
	exitDuplicate  = 3
	exitFailure    = 4
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	app := cli.NewApp()
	app.Name = "tfinvite"
	app.Usage = "invite beta testers to a TestFlight program"
	app.Version = fmt.Sprintf("%s (built %s)", orNA(version), orNA(buildDate))
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		inviteCommand,
		countCommand,
		removeCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
