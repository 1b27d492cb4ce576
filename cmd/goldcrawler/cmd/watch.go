package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/trogers1052/gold-quote-crawler/internal/cache"
	"github.com/trogers1052/gold-quote-crawler/internal/kafka"
)

var groupID string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Apply QUOTE_SYNCED events from Kafka to the Redis quote cache.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Kafka.Brokers) == 0 {
			return errors.New("KAFKA_BROKERS is not set")
		}
		if cfg.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is not set")
		}

		rc, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID, rc, logger)
		defer consumer.Close()

		return consumer.Start(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().StringVar(&groupID, "group", "goldcrawler-cache", "kafka consumer group")
	rootCmd.AddCommand(watchCmd)
}
