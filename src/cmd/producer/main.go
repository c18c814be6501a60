// Package main provides the standalone producer binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kafka-relay/src/config"
	"kafka-relay/src/logger"
	"kafka-relay/src/pipeline"
	"kafka-relay/src/producer"
)

var (
	keyFlag   string
	topicFlag string
)

var rootCmd = &cobra.Command{
	Use:   "producer [message...]",
	Short: "Send messages to the relay topic",
	Long: `Sends each message to Kafka and prints its delivery status.

Without arguments the four demo messages are sent. Brokers are read from
KAFKA_BROKERS; when unset the messages go to an in-memory broker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.LoadFromEnv()
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if topicFlag != "" {
			cfg.Topic = topicFlag
		}

		log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			return err
		}
		defer log.Sync()

		brk, _, err := pipeline.OpenBroker(cfg, log)
		if err != nil {
			return err
		}
		defer brk.Close()

		msgs := producer.DemoMessages
		if len(args) > 0 {
			msgs = make([]producer.Message, 0, len(args))
			for _, body := range args {
				msgs = append(msgs, producer.Message{Key: keyFlag, Body: body})
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return producer.New(brk, cfg.Topic, cmd.OutOrStdout()).Send(ctx, msgs)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&keyFlag, "key", "some_key", "Key for messages given as arguments")
	rootCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic to send to (default KAFKA_TOPIC)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
