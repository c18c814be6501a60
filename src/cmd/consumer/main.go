// Package main provides the standalone consumer binary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kafka-relay/src/broker"
	"kafka-relay/src/config"
	"kafka-relay/src/consumer"
	"kafka-relay/src/journal"
	"kafka-relay/src/logger"
	"kafka-relay/src/pipeline"
	"kafka-relay/src/tui"
)

var (
	humanFlag   bool
	tuiFlag     bool
	journalFlag bool
	historyFlag int
	groupFlag   string
	topicFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "consumer [human]",
	Short: "Print records from the relay topic",
	Long: `Joins the consumer group and prints every record on the topic.

Pass "human" (or --human) to decode keys and payloads as text instead of
printing raw bytes. --tui shows a live table instead of printing lines, and
--journal stores each record in Postgres (POSTGRES_DSN), and --history N
prints the N most recently journaled records instead of consuming.`,
	Args:         cobra.MaximumNArgs(1),
	ValidArgs:    []string{"human"},
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVar(&humanFlag, "human", false, "Decode keys and payloads as UTF-8 text")
	rootCmd.Flags().BoolVar(&tuiFlag, "tui", false, "Show a live table of consumed records")
	rootCmd.Flags().BoolVar(&journalFlag, "journal", false, "Store consumed records in Postgres")
	rootCmd.Flags().IntVar(&historyFlag, "history", 0, "Print the most recent journaled records and exit (requires --journal)")
	rootCmd.Flags().StringVar(&groupFlag, "group", "", "Consumer group (default KAFKA_CONSUMER_GROUP)")
	rootCmd.Flags().StringVar(&topicFlag, "topic", "", "Topic to consume (default KAFKA_TOPIC)")
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	human := humanFlag || (len(args) == 1 && args[0] == "human")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if topicFlag != "" {
		cfg.Topic = topicFlag
	}
	if groupFlag != "" {
		cfg.ConsumerGroup = groupFlag
	}

	var log logger.Logger
	if tuiFlag {
		// Log lines would corrupt the alternate screen.
		log = logger.NewSilentLogger()
	} else {
		cl, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			return err
		}
		defer cl.Sync()
		log = cl
	}

	if !tuiFlag {
		fmt.Fprintf(cmd.OutOrStdout(), "franz-go version: %s\n", broker.ClientVersion())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brk, _, err := pipeline.OpenBroker(cfg, log)
	if err != nil {
		return err
	}
	defer brk.Close()

	if historyFlag > 0 && !journalFlag {
		return fmt.Errorf("--history requires --journal")
	}

	var handlers []consumer.Handler
	if journalFlag {
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("--journal requires POSTGRES_DSN")
		}
		j, err := journal.NewPostgresJournal(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer j.Close()
		if historyFlag > 0 {
			return consumer.PrintHistory(ctx, j, historyFlag, consumer.NewPrinter(cmd.OutOrStdout(), human))
		}
		handlers = append(handlers, consumer.NewJournalHandler(j))
	}

	if !tuiFlag {
		handlers = append(handlers, consumer.NewPrinter(cmd.OutOrStdout(), human))
		return consumer.New(brk, cfg.Topic, cfg.ConsumerGroup, log, handlers...).Run(ctx)
	}

	feed := tui.NewFeed(256, human)
	handlers = append(handlers, feed)
	c := consumer.New(brk, cfg.Topic, cfg.ConsumerGroup, log, handlers...)

	consumeCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		err := c.Run(consumeCtx)
		feed.Close()
		done <- err
	}()

	uiErr := tui.Start(feed, cfg.Topic, cfg.ConsumerGroup)
	cancel()
	if err := <-done; err != nil {
		return err
	}
	return uiErr
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
