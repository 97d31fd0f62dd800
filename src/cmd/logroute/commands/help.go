// FILE: logroute/src/cmd/logroute/commands/help.go
package commands

import (
	"fmt"
	"strings"
)

const generalHelpTemplate = `logroute: routes log lines to sinks by level.

Usage:
  logroute [command] [options]
  logroute [options] < input

Commands:
%s

Application Options:
  -config <path>             Path to configuration file (default: ~/.config/logroute.toml)
  -version                   Display version information and exit
  -quiet                     Suppress all console output, including errors

Input Options:
  -level <LEVEL>             Level for lines without a level prefix
  -namespace <name>          Namespace attached to every line

Runtime Options:
  -disable-status-reporter   Disable the periodic status reporter
  -config-auto-reload        Reload routes when the config file changes

Application Logging:
  -log-output <mode>         file, stdout, stderr, both, none
  -log-level <level>         debug, info, warn, error

For command-specific help:
  logroute help <command>
  logroute <command> --help

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - Environment variables (LOGROUTE_*) override file settings
  - TOML configuration file is the primary method

Routes are reloaded on SIGHUP or SIGUSR1.

Examples:
  # Write a starter configuration
  logroute config -o ~/.config/logroute.toml

  # Route a service's output
  myservice 2>&1 | logroute -config /etc/logroute.toml -namespace myservice
`

// HelpCommand displays general or command-specific help.
type HelpCommand struct {
	router *CommandRouter
}

func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

func (c *HelpCommand) Execute(args []string) error {
	if len(args) > 0 && args[0] != "" {
		cmdName := args[0]

		if handler, exists := c.router.Lookup(cmdName); exists {
			fmt.Print(handler.Help())
			return nil
		}

		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Printf(generalHelpTemplate, c.formatCommandList())
	return nil
}

func (c *HelpCommand) Description() string {
	return "Display help information"
}

func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  logroute help              Show general help
  logroute help <command>    Show help for a specific command
`
}

// formatCommandList returns the sorted, aligned command list.
func (c *HelpCommand) formatCommandList() string {
	names := c.router.Names()

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		handler, _ := c.router.Lookup(name)
		lines = append(lines, fmt.Sprintf("  %-*s  %s", width, name, handler.Description()))
	}
	return strings.Join(lines, "\n")
}
