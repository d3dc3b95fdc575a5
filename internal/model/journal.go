package model

import "time"

// EnqueueRecord — строка журнала отправок: каждая успешная постановка в
// очередь (каноническая или raw) фиксируется best-effort для последующего
// аудита и переигрывания raw-сообщений командой replay-raw.
type EnqueueRecord struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	TicketID   string     `gorm:"type:varchar(64);index" json:"ticket_id"`
	EventType  string     `gorm:"type:varchar(16);index" json:"event_type"`
	Raw        bool       `gorm:"index" json:"raw"`
	ParseError string     `gorm:"type:text" json:"parse_error,omitempty"`
	GroupKey   string     `gorm:"type:varchar(64)" json:"group_key"`
	DedupKey   string     `gorm:"type:varchar(64)" json:"dedup_key"`
	MessageID  string     `gorm:"type:varchar(64)" json:"message_id"`
	Body       string     `gorm:"type:jsonb" json:"body"`
	ReplayedAt *time.Time `json:"replayed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName задаёт имя таблицы журнала.
func (EnqueueRecord) TableName() string { return "enqueue_journal" }
