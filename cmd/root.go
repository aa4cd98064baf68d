package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/config"
	"github.com/sells-group/contact-enrich/internal/fetch"
	"github.com/sells-group/contact-enrich/internal/pipeline"
	"github.com/sells-group/contact-enrich/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "contact-enrich",
	Short: "Contact enrichment pipeline for outreach opportunities",
	Long:  "Crawls opportunity websites, extracts emails, phones, social profiles, contact forms and addresses, and merges them into the opportunity store.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the configured backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initRunner builds the enrichment runner on top of an open store.
func initRunner(st store.Store) (*pipeline.Runner, error) {
	return pipeline.New(cfg, st, fetch.New(cfg.Fetch))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
