package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/ui"
)

// Options wire the CLI to its environment. Zero values mean the process streams.
type Options struct {
	In       io.Reader
	Out, Err io.Writer

	// Copy replaces the system clipboard (tests).
	Copy func(string) error
}

// usageError maps to exit code 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErr(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if opt.In == nil {
		opt.In = os.Stdin
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Err == nil {
		opt.Err = os.Stderr
	}
	if opt.Copy == nil {
		opt.Copy = clipboard.WriteAll
	}
	ui.SetOutput(opt.Out, opt.Err)

	a := &app{opt: opt}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(opt.In)
	root.SetOut(opt.Out)
	root.SetErr(opt.Err)

	err := root.Execute()
	if err == nil {
		return 0
	}
	ui.Fail(err.Error())

	var ue *usageError
	switch {
	case errors.As(err, &ue):
		return 2
	case strings.HasPrefix(err.Error(), "unknown command"),
		strings.HasPrefix(err.Error(), "unknown flag"),
		strings.HasPrefix(err.Error(), "unknown shorthand flag"):
		fmt.Fprintln(opt.Err)
		_ = root.Usage()
		return 2
	}
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "shoplist",
		Short:         "shoplist - a tiny shopping list",
		Long:          "shoplist keeps a local shopping list. Every change is saved immediately.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `  shoplist add Milk
  shoplist ls
  shoplist done 2
  shoplist rm 3
  shoplist export --dir ~/backups
  shoplist import shopping-list-export-2024-03-09T14:30:05.json`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return usageErr("no subcommand given")
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/shoplist/config.yaml or ~/.shoplist/config.yaml)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: file, sqlite or memory")
	pf.StringVar(&a.flags.data, "data", "", "storage location (directory for file, database for sqlite)")
	pf.StringVar(&a.flags.key, "key", "", "storage entry holding the list")
	pf.StringVar(&a.flags.theme, "theme", "", "colour theme: classic, neon or mono")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newDoneCmd(a),
		newRemoveCmd(a),
		newClearCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newShareCmd(a),
		newConfigCmd(a),
	)
	return root
}

// argsAtLeast / argsExactly report arity problems as usage errors.
func argsAtLeast(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErr("usage: shoplist %s", usage)
		}
		return nil
	}
}

func argsExactly(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErr("usage: shoplist %s", usage)
		}
		return nil
	}
}
