package store

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/loopper-ai/ticket-ingest/internal/model"
)

// Journal пишет строку за каждую успешную постановку в очередь
// (best-effort, не блокирует ответ вебхуку) и отдаёт raw-строки для
// переигрывания командой replay-raw.
type Journal struct {
	db *gorm.DB
}

// NewJournal возвращает журнал. db == nil => методы no-op.
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Record сохраняет запись журнала. Ошибка только логируется: журнал —
// вспомогательный след, гарантия доставки обеспечивается очередью.
func (j *Journal) Record(ctx context.Context, rec *model.EnqueueRecord) {
	if j.db == nil {
		return
	}
	if err := j.db.WithContext(ctx).Create(rec).Error; err != nil {
		log.Printf("store: journal write failed ticket_id=%q: %v", rec.TicketID, err)
	}
}

// RawUnreplayed возвращает raw-записи, которые ещё не переигрывались,
// от старых к новым.
func (j *Journal) RawUnreplayed(ctx context.Context, limit int) ([]model.EnqueueRecord, error) {
	var rows []model.EnqueueRecord
	tx := j.db.WithContext(ctx).
		Where("raw = ? AND replayed_at IS NULL", true).
		Order("created_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkReplayed отмечает запись переигранной.
func (j *Journal) MarkReplayed(ctx context.Context, id uint64) error {
	now := time.Now().UTC()
	return j.db.WithContext(ctx).
		Model(&model.EnqueueRecord{}).
		Where("id = ?", id).
		Update("replayed_at", now).Error
}
