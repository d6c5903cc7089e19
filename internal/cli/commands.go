package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/logging"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/share"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/tui"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an item (text can be multiple words)",
		Args:  argsAtLeast(1, "add <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return usageErr("add: empty item")
			}
			if _, err := a.store.Add(text); err != nil {
				return err
			}
			ui.OK("added " + strconv.Quote(text))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var plain, group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items (interactive on a terminal)",
		Args:    argsExactly(0, "ls [--plain] [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain || group || !ui.IsTTY() {
				printList(a.store.Items(), group)
				return nil
			}
			// the TUI owns the terminal; keep the logger off it
			return tui.Run(a.newStore(logging.Quiet()), tui.Options{
				ExportDir:  a.cfg.Export.Dir,
				ShareTitle: a.cfg.Share.Title,
				Copy:       a.opt.Copy,
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print a static panel instead of the interactive list")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done (implies --plain)")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <ref> <text...>",
		Short: "Change the text of an item (ref is an id or 1-based index)",
		Args:  argsAtLeast(2, "edit <ref> <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveRef(a.store.Items(), args[0])
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return usageErr("edit: empty item")
			}
			if _, err := a.store.Update(it.ID, text); err != nil {
				return err
			}
			ui.OK("updated")
			return nil
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <ref>",
		Aliases: []string{"toggle"},
		Short:   "Toggle the completed flag of an item",
		Args:    argsExactly(1, "done <ref>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveRef(a.store.Items(), args[0])
			if err != nil {
				return err
			}
			items, err := a.store.Toggle(it.ID)
			if err != nil {
				return err
			}
			if i := model.IndexOf(items, it.ID); i >= 0 && items[i].Completed {
				ui.OK("checked off")
			} else {
				ui.OK("unchecked")
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <ref>",
		Short: "Remove an item",
		Args:  argsExactly(1, "rm <ref>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := resolveRef(a.store.Items(), args[0])
			if err != nil {
				return err
			}
			if !yes && !a.confirm(ui.DeletePrompt) {
				ui.Info("kept " + strconv.Quote(it.Text))
				return nil
			}
			if _, err := a.store.Delete(it.ID); err != nil {
				return err
			}
			ui.OK("removed " + strconv.Quote(it.Text))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var all, yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed items (--all: every item)",
		Args:  argsExactly(0, "clear [--all] [--yes]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.store.Items()
			if all {
				if len(items) == 0 {
					ui.Info("list is already empty")
					return nil
				}
				if !yes && !a.confirm(ui.ClearAllPrompt(len(items))) {
					return nil
				}
				if _, err := a.store.ClearAll(); err != nil {
					return err
				}
				ui.OK("list cleared")
				return nil
			}

			done, _ := model.Stats(items)
			if done == 0 {
				ui.Info("no completed items to clear")
				return nil
			}
			if !yes && !a.confirm(ui.ClearCompletedPrompt(done)) {
				return nil
			}
			if _, err := a.store.ClearCompleted(); err != nil {
				return err
			}
			ui.OK("completed items cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remove every item, not just completed ones")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var dir string
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the list to a JSON file for backup or sharing",
		Args:  argsExactly(0, "export [--dir D] [--stdout]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toStdout {
				b, err := a.store.Export()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.opt.Out, string(b))
				return nil
			}
			if dir == "" {
				dir = a.cfg.Export.Dir
			}
			p, err := a.store.ExportFile(dir)
			if err != nil {
				return err
			}
			ui.OK("exported to " + p)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory for the export file (default from config)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the JSON instead of writing a file")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var fromMessage bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the list with a previously exported JSON file",
		Args:  argsExactly(1, "import <file|->"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(a.opt.In, args[0])
			if err != nil {
				return err
			}
			if fromMessage {
				payload, ok := share.ExtractJSON(string(data))
				if !ok {
					return fmt.Errorf("import: no JSON section found in message")
				}
				data = payload
			}
			items, err := a.store.Import(data)
			if err != nil {
				if errors.Is(err, store.ErrImportValidation) {
					ui.Hint("your list was left unchanged")
				}
				return fmt.Errorf("import: %w", err)
			}
			ui.OK(fmt.Sprintf("imported %d items", len(items)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromMessage, "message", false, "input is a shared message; import its JSON section")
	return cmd
}

func newShareCmd(a *app) *cobra.Command {
	var copyText, asURL bool
	var title string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print the list as a shareable message",
		Args:  argsExactly(0, "share [--copy] [--url] [--title T]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				title = a.cfg.Share.Title
			}
			text, err := share.Text(title, a.store.Items())
			if errors.Is(err, share.ErrNothingToShare) {
				ui.Info(err.Error())
				return nil
			}
			if err != nil {
				return err
			}
			out := text
			if asURL {
				out = share.WhatsAppURL(text)
			}
			if copyText {
				if err := a.opt.Copy(out); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				ui.OK("copied to clipboard")
				return nil
			}
			fmt.Fprintln(a.opt.Out, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy to the clipboard instead of printing")
	cmd.Flags().BoolVar(&asURL, "url", false, "emit a WhatsApp link carrying the message")
	cmd.Flags().StringVar(&title, "title", "", "message heading (default from config)")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var initFile bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration (--init: write it to the config file)",
		Args:  argsExactly(0, "config [--init]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if initFile {
				path := a.flags.configPath
				if path == "" {
					path = config.DefaultPath()
				}
				if err := a.cfg.Save(path); err != nil {
					return err
				}
				ui.OK("wrote " + path)
				return nil
			}
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Fprint(a.opt.Out, string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "save the effective configuration")
	return cmd
}

// confirm asks prompt on the output and reads y/N from the input.
// EOF or anything but yes counts as no.
func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.opt.Out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(a.opt.In).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(a.opt.Out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// resolveRef finds an item by exact id first, then by 1-based position.
func resolveRef(items []model.Item, ref string) (model.Item, error) {
	if i := model.IndexOf(items, ref); i >= 0 {
		return items[i], nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		ui.Hint("Hint: run `shoplist ls --plain` to see valid indexes")
		return model.Item{}, usageErr("no item with id %q", ref)
	}
	if n < 1 || n > len(items) {
		ui.Hint("Hint: run `shoplist ls --plain` to see valid indexes")
		return model.Item{}, usageErr("index out of range: have %d, got %d", len(items), n)
	}
	return items[n-1], nil
}

func readInput(in io.Reader, name string) ([]byte, error) {
	if name == "-" {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}
