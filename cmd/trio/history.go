package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"trio.game/internal/config"
	"trio.game/internal/persistence/history"
)

// runHistory implements "trio history": it lists the last recorded rounds.
func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "yaml config file (optional)")
	dbPath := fs.String("db", "", "history sqlite path (overrides config)")
	limit := fs.Int("n", 10, "number of rounds")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		pterm.Error.Printfln("config: %v", err)
		return 2
	}
	if *dbPath != "" {
		cfg.History.DBPath = *dbPath
	}
	if cfg.History.DBPath == "" {
		fmt.Fprintln(os.Stderr, "missing -db (or history.db_path in the config)")
		return 2
	}

	store, err := history.Open(cfg.History.DBPath)
	if err != nil {
		pterm.Error.Printfln("history: %v", err)
		return 1
	}
	defer store.Close()
	rounds, err := store.Recent(context.Background(), *limit)
	if err != nil {
		pterm.Error.Printfln("history: %v", err)
		return 1
	}
	if len(rounds) == 0 {
		pterm.Info.Println("no rounds recorded yet")
		return 0
	}

	data := pterm.TableData{{"Ended", "Game", "Winner", "Scores"}}
	for _, r := range rounds {
		winner := "-"
		if w, ok := r.Winner(); ok {
			winner = fmt.Sprintf("%s (%d)", w.Name, w.Score)
		}
		scores := ""
		for i, s := range r.Scores {
			if i > 0 {
				scores += ", "
			}
			scores += fmt.Sprintf("%s %d", s.Name, s.Score)
		}
		data = append(data, []string{r.EndedAt.Local().Format("2006-01-02 15:04"), r.GameID, winner, scores})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err.Error())
		return 1
	}
	return 0
}
