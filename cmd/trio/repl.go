package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"trio.game/internal/reconciler"
	"trio.game/internal/render/term"
)

const help = `commands:
  action | a        play the offered action
  select N [N N]    pick cards by position while selecting
  hint | h          highlight a trio
  resync | r        reload the game from the server
  show              redraw the table
  quit | q          leave`

// repl reads commands from in until quit or EOF, then calls stop.
func repl(ctx context.Context, stop func(), in io.Reader, rec *reconciler.Reconciler, out *term.Renderer) {
	defer stop()
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "action", "a":
			if err := rec.Act(ctx); errors.Is(err, reconciler.ErrActionDisabled) {
				pterm.Warning.Printfln("nothing to do right now (%s)", rec.LegalAction().Label)
			}
		case "select", "s":
			if len(fields) == 1 {
				pterm.Warning.Println("select needs positions")
				continue
			}
			for _, f := range fields[1:] {
				pos, err := strconv.Atoi(f)
				if err != nil {
					pterm.Warning.Printfln("bad position %q", f)
					break
				}
				if err := rec.ToggleCard(ctx, pos); err != nil {
					pterm.Warning.Println(err.Error())
					break
				}
			}
		case "hint", "h":
			rec.Hint()
		case "resync", "r":
			if err := rec.Resync(ctx); err == nil {
				pterm.Success.Println("game reloaded")
			}
		case "show":
			out.Redraw()
		case "quit", "q", "exit":
			return
		case "help", "?":
			pterm.Println(help)
		default:
			pterm.Warning.Printfln("unknown command %q, try help", fields[0])
		}
	}
}
