package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
	Out         io.Writer
	Logger      *logrus.Logger
}

// NewRootCommand creates the root command writing results to stdout and
// logs to stderr
func NewRootCommand() *Command {
	return newRootCommand(os.Stdout, NewLogger(os.Stderr))
}

func newRootCommand(out io.Writer, logger *logrus.Logger) *Command {
	root := &Command{
		Name:        "protoboard-cli",
		Description: "Protoboard - render proto3 schemas and sequence diagrams",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("protoboard-cli", flag.ContinueOnError),
		Out:         out,
		Logger:      logger,
	}

	// Add subcommands
	root.Subcommands["render"] = newRenderCommand(out, logger)
	root.Subcommands["watch"] = newWatchCommand(logger)
	root.Subcommands["name"] = newNameCommand(out)

	return root
}

// NewLogger creates the logrus logger used by CLI commands
func NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// Execute runs the command with the process arguments
func (c *Command) Execute(ctx context.Context) error {
	return c.ExecuteArgs(ctx, os.Args[1:])
}

// ExecuteArgs runs the subcommand named by args[0]
func (c *Command) ExecuteArgs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help flag
	switch strings.ToLower(args[0]) {
	case "-h", "--help", "help":
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(ctx, args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Fprintf(c.Out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(c.Out, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.Out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

// parseFlags parses args and rejects positional leftovers
func (c *Command) parseFlags(args []string) error {
	if err := c.Flags.Parse(args); err != nil {
		return err
	}
	if c.Flags.NArg() > 0 {
		return fmt.Errorf("%s: unexpected arguments: %s", c.Name, strings.Join(c.Flags.Args(), " "))
	}
	return nil
}
