package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "rewecart help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  rewecart                                           Show the current transfer task
  rewecart login [common flags] [<token>]            Store a Todoist API token
  rewecart logout [common flags]
  rewecart projects [common flags]                   List projects and sections
  rewecart tasks [common flags] [--project <name>] [--section <name>] [--tag <tag>]
  rewecart start [common flags] [--project <name>] [--section <name>] [--tag <tag>]
  rewecart current [common flags]                    Show the task and its products
  rewecart pick [common flags] [<n>]                 Choose a product and move on
  rewecart skip [common flags]
  rewecart refine [common flags] <term...>
  rewecart summary [common flags]
  rewecart close [common flags] [--all]              Close completed tasks in Todoist
  rewecart reset [common flags]
  rewecart transfer [common flags] [--resume] [--project <name>] [--section <name>] [--tag <tag>]
  rewecart search [common flags] <term...>
  rewecart mappings [common flags] [--clear]
  rewecart unmap [common flags] <task...>
  rewecart settings [common flags] [--reset]
  rewecart set [common flags] <key> <value>
  rewecart export [common flags] [--out <file>]
  rewecart import [common flags] <file>
  rewecart help
  rewecart version

Transfer prompt:
  <n>          Choose product n
  <enter>      Choose the product marked with *
  s            Skip the task
  r <term...>  Search again with another term
  q            Stop; resume later with: rewecart transfer --resume

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
