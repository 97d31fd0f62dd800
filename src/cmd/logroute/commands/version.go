// FILE: logroute/src/cmd/logroute/commands/version.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"logroute/src/internal/version"
)

type VersionCommand struct {
	output io.Writer
}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{output: os.Stdout}
}

func (c *VersionCommand) Execute(args []string) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	short := fs.Bool("short", false, "Print only the version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *short {
		fmt.Fprintln(c.output, version.Short())
		return nil
	}
	fmt.Fprintln(c.output, version.String())
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Version Command - Show logroute version information

Usage:
  logroute version [-short]
  logroute -version

Options:
  -short   Print only the version number
`
}
