package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/trogers1052/gold-quote-crawler/internal/browser"
	"github.com/trogers1052/gold-quote-crawler/internal/cache"
	"github.com/trogers1052/gold-quote-crawler/internal/crawler"
	"github.com/trogers1052/gold-quote-crawler/internal/kafka"
	"github.com/trogers1052/gold-quote-crawler/internal/pipeline"
	"github.com/trogers1052/gold-quote-crawler/internal/reconcile"
	"github.com/trogers1052/gold-quote-crawler/internal/report"
	"go.uber.org/zap"
)

var (
	noSync   bool
	noExport bool
	backend  string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Extract the quote table, export it and sync it to the configured store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if backend == "" {
			backend = cfg.Store.Backend
		}

		c := crawler.New(browser.Factory(cfg.Crawler, logger), cfg.Crawler, logger)
		var opts []pipeline.Option
		if !noExport {
			opts = append(opts, pipeline.WithExports(pipeline.DefaultExports(cfg.Export)...))
		}

		if !noSync {
			store, closeStore, err := openStore(backend, cfg)
			if err != nil {
				// the crawl still runs; the report shows sync as disabled
				logger.Error("failed to open store, sync disabled", zap.String("backend", backend), zap.Error(err))
			} else {
				defer closeStore()
			}
			if store != nil {
				var listeners []reconcile.Listener
				if cfg.Redis.Addr != "" {
					rc, err := cache.NewRedisCache(cfg.Redis)
					if err != nil {
						logger.Warn("redis unavailable, cache disabled", zap.Error(err))
					} else {
						defer rc.Close()
						listeners = append(listeners, rc)
					}
				}
				if len(cfg.Kafka.Brokers) > 0 {
					producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
					defer producer.Close()
					listeners = append(listeners, producer)
				}
				opts = append(opts, pipeline.WithSyncer(reconcile.New(store, logger, listeners...), backend))
			}
		}

		summary := pipeline.New(c, logger, opts...).Run(ctx)
		report.Render(os.Stdout, summary)
		return nil
	},
}

func init() {
	crawlCmd.Flags().BoolVar(&noSync, "no-sync", false, "skip syncing to the remote store")
	crawlCmd.Flags().BoolVar(&noExport, "no-export", false, "skip writing export files")
	crawlCmd.Flags().StringVar(&backend, "backend", "", "store backend: supabase, postgres, sqlite or none (default from STORE_BACKEND)")
	rootCmd.AddCommand(crawlCmd)
}
