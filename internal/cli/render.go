package cli

import (
	"fmt"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func printList(items []model.Item, group bool) {
	t := ui.Current()
	d, p := model.Stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Shopping list"),
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, t.SymPending), p,
		ui.C(t.Accent, "Total"), len(items),
	)

	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items, 1)...)
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: add with `shoplist add Milk`"))
	ui.Panel(lines)
}

// flatLines numbers items from start so grouped views keep global indexes.
func flatLines(items []model.Item, start int) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, color = t.BoxChecked, t.Success
		}
		text := it.Text
		if r := []rune(text); len(r) > 60 {
			text = string(r[:57]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.C(t.Muted, fmt.Sprintf("%2d.", start+i)), ui.C(color, box), text))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []string
	for i, it := range items {
		line := flatLines([]model.Item{it}, i+1)[0]
		if it.Completed {
			done = append(done, line)
		} else {
			pend = append(pend, line)
		}
	}
	section := func(title string, ls []string) []string {
		out := []string{ui.C(t.Accent, title)}
		if len(ls) == 0 {
			return append(out, ui.C(t.Muted, "(none)"))
		}
		return append(out, ls...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
