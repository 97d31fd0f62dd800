// FILE: logroute/src/cmd/logroute/commands/router.go
package commands

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

// Handler is one logroute subcommand.
type Handler interface {
	Execute(args []string) error
	Description() string
	Help() string
}

var helpFlags = []string{"-h", "-help", "--help"}

// CommandRouter maps the first CLI argument to a subcommand. Arguments that
// start with a flag belong to the router process itself.
type CommandRouter struct {
	commands map[string]Handler
	output   io.Writer
}

// NewCommandRouter registers the config, version and help subcommands.
func NewCommandRouter() *CommandRouter {
	r := &CommandRouter{output: os.Stdout}
	r.commands = map[string]Handler{
		"config":  NewConfigCommand(),
		"version": NewVersionCommand(),
	}
	r.commands["help"] = NewHelpCommand(r)
	return r
}

// Route runs the subcommand named by args[1] and reports whether one ran.
// A help flag prints the subcommand's help instead of running it; with no
// subcommand it prints the general help.
func (r *CommandRouter) Route(args []string) (bool, error) {
	if len(args) < 2 {
		return false, nil
	}
	name, rest := args[1], args[2:]

	if name == "" || strings.HasPrefix(name, "-") {
		if wantsHelp(args[1:]) {
			return true, r.commands["help"].Execute(nil)
		}
		return false, nil
	}

	handler, ok := r.commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command: %s\n\nRun 'logroute help' for usage", name)
	}
	if wantsHelp(rest) {
		if name == "help" {
			return true, handler.Execute(nil)
		}
		fmt.Fprint(r.output, handler.Help())
		return true, nil
	}
	return true, handler.Execute(rest)
}

func wantsHelp(args []string) bool {
	return slices.ContainsFunc(args, func(a string) bool {
		return slices.Contains(helpFlags, a)
	})
}

// Lookup returns the subcommand registered as name.
func (r *CommandRouter) Lookup(name string) (Handler, bool) {
	h, ok := r.commands[name]
	return h, ok
}

// Names returns the registered subcommand names in sorted order.
func (r *CommandRouter) Names() []string {
	return slices.Sorted(maps.Keys(r.commands))
}
