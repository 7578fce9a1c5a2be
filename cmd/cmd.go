// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand creates the config file and initializes the store
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file if missing, initialize the store and run migrations",
		Action: r.Setup,
	}
}

// connectionCommand checks the legacy database
func connectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "test-connection",
		Aliases: []string{"conn"},
		Usage:   "Check the WordPress database connection and required tables",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.TestConnection,
	}
}

// previewCommand samples legacy records
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Show a sample of legacy records for a category",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "category",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Preview,
	}
}

// migrateCommand runs migration batches
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate legacy records into the target store",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "types",
				Aliases:  []string{"t"},
				Usage:    "Categories to migrate (users, categories, tags, media, posts, pages)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "batch-size",
				Aliases: []string{"b"},
				Usage:   "Records per batch (defaults to migration.batch_size)",
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Offset of the batch to process",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Process every batch until the source is exhausted",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Migrate,
	}
}

func ledgerFilterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Usage: "Filter by migration type (users, posts, media, terms)",
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "Filter by status (success, failed, skipped)",
		},
	}
}

// ledgerCommand inspects and exports the migration ledger
func ledgerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Inspect and export the migration ledger",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List ledger entries, newest first",
				Flags: append(ledgerFilterFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				),
				Action: r.LedgerList,
			},
			{
				Name:  "stats",
				Usage: "Show entry counts per migration type",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LedgerStats,
			},
			{
				Name:  "export",
				Usage: "Export the ledger as csv, markdown or text",
				Flags: append(ledgerFilterFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (csv uses it as a base name)",
					},
				),
				Action: r.LedgerExport,
			},
		},
	}
}

// serveCommand runs the HTTP admin API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP admin API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// settingsCommand shows and updates settings
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show (and optionally update) the effective settings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "driver", Usage: "Legacy database driver (mysql or sqlite3)"},
			&cli.StringFlag{Name: "host", Usage: "Legacy database host"},
			&cli.IntFlag{Name: "port", Usage: "Legacy database port"},
			&cli.StringFlag{Name: "name", Usage: "Legacy database name"},
			&cli.StringFlag{Name: "username", Usage: "Legacy database user"},
			&cli.StringFlag{Name: "password", Usage: "Legacy database password (left unchanged when empty)"},
			&cli.StringFlag{Name: "prefix", Usage: "Legacy table prefix"},
			&cli.StringFlag{Name: "base-url", Usage: "WordPress site URL for attachment downloads"},
			&cli.IntFlag{Name: "batch-size", Usage: "Default batch size"},
			&cli.BoolFlag{Name: "skip-existing", Usage: "Count refreshed content items as skipped"},
			&cli.BoolFlag{Name: "save", Usage: "Write changes to the config file"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Settings,
	}
}

// tuiCommand returns the top-level TUI command for interactive category selection and migration.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for category selection and migration",
		Action:  r.TUI,
	}
}
