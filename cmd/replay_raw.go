package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/loopper-ai/ticket-ingest/internal/config"
	"github.com/loopper-ai/ticket-ingest/internal/database"
	"github.com/loopper-ai/ticket-ingest/internal/ingest"
	"github.com/loopper-ai/ticket-ingest/internal/model"
	"github.com/loopper-ai/ticket-ingest/internal/queue"
	"github.com/loopper-ai/ticket-ingest/internal/store"
)

var replayRawCmd = &cobra.Command{
	Use:   "replay-raw",
	Short: "Re-queue journaled raw fallback events that have not been replayed yet",
	RunE:  runReplayRaw,
}

var replayRawLimit int

func init() {
	replayRawCmd.Flags().IntVar(&replayRawLimit, "limit", 500, "maximum number of journal records to replay")
	rootCmd.AddCommand(replayRawCmd)
}

func runReplayRaw(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../../.env") // repo root when running from bin/
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !cfg.JournalEnabled() {
		return fmt.Errorf("config: DB_DATABASE is not set, journal is disabled")
	}
	conn, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	journal := store.NewJournal(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	records, err := journal.RawUnreplayed(ctx, replayRawLimit)
	if err != nil {
		return fmt.Errorf("list journal: %w", err)
	}
	log.Printf("replay-raw: found %d unreplayed raw records", len(records))
	if len(records) == 0 {
		return nil
	}

	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, nil)
	defer producer.Close()

	replayed := 0
	for i := range records {
		rec := &records[i]
		// Свежий ключ дедупликации: окно исходной доставки могло ещё не истечь.
		env := model.Envelope{
			Body:     []byte(rec.Body),
			GroupKey: rec.GroupKey,
			DedupKey: ingest.DedupKey([]byte(rec.Body), fmt.Sprintf("replay-%d", rec.ID)),
		}
		if _, err := producer.Send(ctx, env); err != nil {
			log.Printf("replay-raw: record %d: %v", rec.ID, err)
			continue
		}
		if err := journal.MarkReplayed(ctx, rec.ID); err != nil {
			log.Printf("replay-raw: mark record %d: %v", rec.ID, err)
		}
		replayed++
		if replayed%50 == 0 || i == len(records)-1 {
			log.Printf("replay-raw: re-queued %d/%d", replayed, len(records))
		}
	}
	log.Printf("replay-raw: done, re-queued %d of %d records", replayed, len(records))
	return nil
}
