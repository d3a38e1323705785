// Command sde resolves SOURCE_DATE_EPOCH and normalizes file trees for reproducible builds.
package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "dev"

func newApp(w, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "sde"
	app.Usage = "reproducible build timestamps from SOURCE_DATE_EPOCH"
	app.Version = version

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: " log debug output",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "epoch",
			Usage:     "print the build timestamp, SOURCE_DATE_EPOCH if set or CANDIDATE (default now)",
			ArgsUsage: "[CANDIDATE]",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width, w",
					Value: 0,
					Usage: " clamp to a `BITS` wide field [32|64], default is the host time_t width",
				},
			},
			Action: runEpoch,
		},
		{
			Name:      "uuid",
			Usage:     "print a UUID for NAME, stable across builds when SOURCE_DATE_EPOCH is set",
			ArgsUsage: "NAME",
			Action:    runUUID,
		},
		{
			Name:      "clamp",
			Usage:     "set times later than SOURCE_DATE_EPOCH under DIR to SOURCE_DATE_EPOCH",
			ArgsUsage: "DIR",
			Action:    runClamp,
		},
		{
			Name:      "copy",
			Usage:     "copy SRC to DST, clamping times to SOURCE_DATE_EPOCH when set",
			ArgsUsage: "SRC DST",
			Action:    runCopy,
		},
		{
			Name:      "compare",
			Usage:     "check that two trees are identical in structure, contents and file times",
			ArgsUsage: "A B",
			Action:    runCompare,
		},
	}

	app.Before = func(c *cli.Context) error {
		log.SetOutput(c.App.ErrWriter)
		if c.GlobalBool("debug") {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	}

	return app
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
