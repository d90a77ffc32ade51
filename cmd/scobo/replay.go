package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/okian/scobo/internal/adapters/repository"
	"github.com/okian/scobo/internal/config"
	"github.com/okian/scobo/internal/domain/scoring"
	"github.com/okian/scobo/internal/domain/types"
	"github.com/okian/scobo/pkg/logger"
)

func replayFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log",
			Usage: "event log file (defaults to the configured event_log_path)",
		},
		&cli.Int64Flag{
			Name:     "chat",
			Usage:    "chat id",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print JSON instead of text",
		},
	}
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:   "board",
		Usage:  "replay the log and print a chat's scoreboard",
		Flags:  replayFlags(),
		Action: board,
	}
}

func undoTargetCommand() *cli.Command {
	return &cli.Command{
		Name:   "undo-target",
		Usage:  "print whose point the next undo in a chat would take back",
		Flags:  replayFlags(),
		Action: undoTarget,
	}
}

// openLog resolves the log path without creating anything: offline tools
// only read.
func openLog(c *cli.Context) (*repository.FileStore, error) {
	path := c.String("log")
	if path == "" {
		cfg, err := config.Load(c.Context)
		if err != nil {
			return nil, err
		}
		path = cfg.EventLogPath
	}
	return repository.NewFileStore(path), nil
}

func board(c *cli.Context) error {
	store, err := openLog(c)
	if err != nil {
		return err
	}
	chatID := c.Int64("chat")
	scores, err := scoring.NewAggregator(store, scoring.WithLogger(logger.Nop())).Compute(c.Context, chatID)
	if err != nil {
		return err
	}
	entries := scoring.Rank(scores)

	out := c.App.Writer
	if c.Bool("json") {
		if entries == nil {
			entries = []types.Entry{}
		}
		return json.NewEncoder(out).Encode(entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(out, "chat %d: no points yet\n", chatID)
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(out, "%3d. %-24s %d\n", e.Rank, e.Participant, e.Score); err != nil {
			return err
		}
	}
	return nil
}

func undoTarget(c *cli.Context) error {
	store, err := openLog(c)
	if err != nil {
		return err
	}
	chatID := c.Int64("chat")
	p, ok, err := scoring.NewUndoResolver(store, scoring.WithUndoLogger(logger.Nop())).FindLastScoringEvent(c.Context, chatID)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if c.Bool("json") {
		return json.NewEncoder(out).Encode(types.UndoTarget{ChatID: chatID, Participant: p, Found: ok})
	}
	if !ok {
		_, err := fmt.Fprintf(out, "chat %d: nothing to undo\n", chatID)
		return err
	}
	_, err = fmt.Fprintln(out, p)
	return err
}
