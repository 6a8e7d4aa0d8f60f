// Command ingest is the SoccerScore sync CLI.
//
// Usage:
//
//	soccerscore-ingest sync
//	soccerscore-ingest sync matches
//	soccerscore-ingest sync teams standings
//	soccerscore-ingest schema
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/albapepper/soccerscore/internal/cache"
	"github.com/albapepper/soccerscore/internal/config"
	"github.com/albapepper/soccerscore/internal/provider/sportdata"
	"github.com/albapepper/soccerscore/internal/seed"
	"github.com/albapepper/soccerscore/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	root := &cobra.Command{
		Use:           "soccerscore-ingest",
		Short:         "SoccerScore data sync CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(syncCmd())
	root.AddCommand(schemaCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// sync command
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	var flushCache bool
	cmd := &cobra.Command{
		Use:       "sync [all|leagues|teams|matches|standings]...",
		Short:     "Copy provider data into the store",
		Long:      "Runs the given stages in the order given. With no stage, or with \"all\", runs leagues, teams, matches and standings.",
		ValidArgs: []string{"all", "leagues", "teams", "matches", "standings"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := parseStages(args)
			if err != nil {
				return err
			}
			return withStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				if err := cfg.RequireAPIKey(); err != nil {
					return err
				}
				client := sportdata.NewClient(cfg.SportDataBaseURL, cfg.SportDataAPIKey,
					cfg.SportDataTimeout, cfg.SportDataRequestsPerMinute, logger)

				result, err := seed.NewPipeline(client, st, logger).RunStages(ctx, stages...)
				logger.Info("Sync finished", "summary", result.Summary())
				if flushCache && result.Upserted() > 0 {
					if ferr := flushResponseCache(ctx, cfg); ferr != nil {
						if err != nil {
							logger.Warn("Failed to flush response cache", "error", ferr)
							return err
						}
						return ferr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&flushCache, "flush-cache", true, "Flush the shared Redis response cache after a sync that wrote documents")
	return cmd
}

func parseStages(args []string) ([]seed.Stage, error) {
	if len(args) == 0 {
		return seed.Stages, nil
	}
	stages := make([]seed.Stage, 0, len(args))
	for _, arg := range args {
		if arg == "all" {
			if len(args) > 1 {
				return nil, fmt.Errorf("\"all\" cannot be combined with other stages")
			}
			return seed.Stages, nil
		}
		s, err := seed.ParseStage(arg)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, nil
}

// flushResponseCache clears the API's response cache when it lives in Redis.
// An in-memory cache belongs to the API process and cannot be reached here.
func flushResponseCache(ctx context.Context, cfg *config.Config) error {
	if !cfg.CacheEnabled || cfg.CacheBackend != config.CacheRedis {
		return nil
	}
	c, err := cache.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()
	if err := c.Flush(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	logger.Info("Response cache flushed")
	return nil
}

// --------------------------------------------------------------------------
// schema command
// --------------------------------------------------------------------------

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the store's indexes or tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				if err := st.EnsureSchema(ctx); err != nil {
					return err
				}
				logger.Info("Schema ensured", "driver", cfg.StoreDriver)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared helpers
// --------------------------------------------------------------------------

func withStore(fn func(ctx context.Context, cfg *config.Config, st store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer st.Close(context.Background())

	return fn(ctx, cfg, st)
}
