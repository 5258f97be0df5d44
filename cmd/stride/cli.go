package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jtammen/stride/internal/activity"
	"github.com/jtammen/stride/internal/config"
	"github.com/jtammen/stride/internal/errors"
	"github.com/jtammen/stride/internal/garmin"
	"github.com/jtammen/stride/internal/mcp"
	"github.com/jtammen/stride/internal/state"
	syncer "github.com/jtammen/stride/internal/sync"
	"github.com/jtammen/stride/internal/vault"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "stride",
		Usage:   "Sync remote fitness activities into markdown workout notes",
		Version: Version,
		Commands: []*cli.Command{
			syncCmd(db, cfg, baseDir),
			retryCmd(db, cfg, baseDir),
			statusCmd(db, cfg),
			unknownsCmd(db),
			recentCmd(cfg),
			classifyCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newRunner wires the full sync pipeline: vault store, remote client, and
// rotating log. Commands that never touch the remote don't pay for it.
func newRunner(db *sql.DB, cfg *config.Config, baseDir string) (*syncer.Runner, func(), error) {
	store, err := vault.NewStore(cfg.VaultDir)
	if err != nil {
		return nil, nil, err
	}

	client, err := garmin.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	runLog, unknownLog, closer := syncer.OpenLoggers(baseDir, cfg)
	runner := syncer.NewRunner(db, store, client, cfg,
		syncer.WithLogger(runLog), syncer.WithUnknownLogger(unknownLog))
	return runner, func() { closer.Close() }, nil
}

// syncCmd creates the sync command.
func syncCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch new activities and write them to the vault",
		Action: func(c *cli.Context) error {
			runner, done, err := newRunner(db, cfg, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer done()

			report, err := runner.Run(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(report)
		},
	}
}

// retryCmd creates the retry command.
func retryCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "retry",
		Usage: "Re-attempt previously skipped activities (after a taxonomy fix)",
		Action: func(c *cli.Context) error {
			runner, done, err := newRunner(db, cfg, baseDir)
			if err != nil {
				return outputError(err)
			}
			defer done()

			report, err := runner.Retry(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(report)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the sync cursor and the latest run summary",
		Action: func(c *cli.Context) error {
			out := map[string]any{}

			cursor, ok, err := state.Cursor(db)
			if err != nil {
				return outputError(err)
			}
			if ok {
				out["last_synced_at"] = cursor.Format(time.RFC3339)
			} else {
				out["last_synced_at"] = nil
			}

			if run, ok, err := state.LatestRun(db); err != nil {
				return outputError(err)
			} else if ok {
				out["latest_run"] = map[string]any{
					"id":          run.ID,
					"finished_at": time.Unix(run.FinishedAt, 0).Format(time.RFC3339),
					"fetched":     run.Fetched,
					"created":     run.Created,
					"duplicates":  run.Duplicates,
					"failed":      run.Failed,
				}
			}

			skipped, err := state.ListUnresolvedSkipped(db)
			if err != nil {
				return outputError(err)
			}
			out["unresolved_skipped"] = len(skipped)

			if store, err := vault.NewStore(cfg.VaultDir); err == nil {
				if ix, err := store.Scan(); err == nil {
					out["synced_notes"] = ix.Len()
				}
			}

			return outputJSON(out)
		},
	}
}

// unknownsCmd creates the unknowns command.
func unknownsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "unknowns",
		Usage: "List skipped activities that still need a taxonomy entry or a fix",
		Action: func(c *cli.Context) error {
			skipped, err := state.ListUnresolvedSkipped(db)
			if err != nil {
				return outputError(err)
			}

			items := make([]map[string]any, 0, len(skipped))
			for _, s := range skipped {
				items = append(items, map[string]any{
					"remote_id":  s.RemoteID,
					"type_label": s.TypeLabel,
					"started_at": s.StartedAt.Format(time.RFC3339),
					"code":       s.Code,
					"message":    s.Message,
				})
			}
			return outputJSON(map[string]any{"skipped": items})
		},
	}
}

// recentCmd creates the recent command.
func recentCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "List the most recent synced workout notes",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Maximum number of notes"},
		},
		Action: func(c *cli.Context) error {
			store, err := vault.NewStore(cfg.VaultDir)
			if err != nil {
				return outputError(err)
			}

			headers, err := store.ListHeaders()
			if err != nil {
				return outputError(err)
			}
			if limit := c.Int("limit"); limit > 0 && len(headers) > limit {
				headers = headers[:limit]
			}
			return outputJSON(map[string]any{"workouts": headers})
		},
	}
}

// classifyCmd creates the classify command.
func classifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify a raw activity type label",
		ArgsUsage: "<type_label>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("type_label argument is required"))
			}

			cls, err := activity.Classify(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"type_label": c.Args().First(),
				"category":   cls.Category,
				"exercise":   cls.Exercise,
			})
		},
	}
}

// runMCP starts the MCP server with the full pipeline wired.
func runMCP(db *sql.DB, cfg *config.Config, baseDir string) error {
	store, err := vault.NewStore(cfg.VaultDir)
	if err != nil {
		return err
	}

	client, err := garmin.NewClient(cfg)
	if err != nil {
		return err
	}

	runLog, unknownLog, closer := syncer.OpenLoggers(baseDir, cfg)
	defer closer.Close()

	runner := syncer.NewRunner(db, store, client, cfg,
		syncer.WithLogger(runLog), syncer.WithUnknownLogger(unknownLog))
	return mcp.Run(db, store, runner, Version)
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if sErr, ok := err.(*errors.StrideError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
