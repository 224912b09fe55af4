package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints the most recent tool invocations from the log.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	if config.Database.Path == "" {
		return fmt.Errorf("%w: no database path configured", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	repo, err := repositories.NewInvocationRepository(db)
	if err != nil {
		return err
	}

	invocations, err := repo.Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(invocations) == 0 {
		return r.writePlain("No invocations recorded\n")
	}

	for _, inv := range invocations {
		status := "✓"
		if !inv.Success {
			status = "✗"
		}
		r.writePlain("%s  %s  %s/%s  %d  %dms\n",
			status, inv.CreatedAt.Format("2006-01-02 15:04:05"), inv.Agent, inv.Tool, inv.StatusCode, inv.DurationMS)
	}

	return nil
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent tool invocations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of invocations to show",
				Value: 20,
			},
		},
		Action: r.History,
	}
}
