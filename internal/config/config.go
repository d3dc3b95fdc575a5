package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/loopper-ai/ticket-ingest/internal/model"
)

// defaultBackendPath — путь приёма батчей на app-сервере, когда задан
// только BACKEND_SERVER_URL.
const defaultBackendPath = "/queue/webhook"

// Config — неизменяемая конфигурация процесса. Собирается один раз при
// старте и передаётся параметром; компоненты не читают окружение сами.
type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// Очередь (Kafka): KafkaTopic — топик канонических и raw сообщений,
	// ключ сообщения = ticket_id даёт упорядочивание по тикету.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	// RedisAddr включает окно подавления дубликатов по dedup_key.
	// Пустое значение — окно выключено.
	RedisAddr   string
	DedupWindow time.Duration

	// Тумблеры обработки по типу события. unknown не фильтруется —
	// он всегда доходит до классификатора и уходит raw fallback-ом.
	ProcessCreated bool
	ProcessUpdated bool

	// APITimeout ограничивает поход в Freshdesk; держим его заметно
	// меньше WriteTimeout HTTP-сервера, чтобы остался запас на fallback
	// и отправку в очередь.
	APITimeout time.Duration

	// SecretsFile — путь к JSON-секрету Freshdesk. Пусто — креды из env.
	SecretsFile string

	// Форвардер: куда и как сливать батчи из очереди.
	BackendURL     string
	ForwardTimeout time.Duration
	BatchSize      int
	BatchWait      time.Duration

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:  getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort: firstEnv("APP_PORT", "HTTP_PORT", "8098"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		KafkaBrokers: ParseBrokers(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC_INGEST", "ticket.agent-input"),
		KafkaGroup:   getEnv("KAFKA_GROUP_FORWARDER", "ticket-ingest-forwarder"),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		DedupWindow: getDuration("DEDUP_WINDOW", 5*time.Minute),

		ProcessCreated: getBool("PROCESS_CREATED", true),
		ProcessUpdated: getBool("PROCESS_UPDATED", true),

		APITimeout:  getDuration("API_TIMEOUT", 15*time.Second),
		SecretsFile: getEnv("FRESHDESK_SECRETS_FILE", ""),

		BackendURL:     getEnv("BACKEND_WEBHOOK_URL", ""),
		ForwardTimeout: getDuration("FORWARD_TIMEOUT", 15*time.Second),
		BatchSize:      getInt("FORWARD_BATCH_SIZE", 10),
		BatchWait:      getDuration("FORWARD_BATCH_WAIT", 2*time.Second),
	}
	if cfg.BackendURL == "" {
		if base := strings.TrimRight(getEnv("BACKEND_SERVER_URL", ""), "/"); base != "" {
			cfg.BackendURL = base + defaultBackendPath
		}
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

// Validate — обязательный минимум режима api: без очереди гарантия
// «ни одно событие не теряется» невыполнима.
func (c *Config) Validate() error {
	if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
		return errors.New("config: KAFKA_BROKERS and KAFKA_TOPIC_INGEST are required")
	}
	if c.AppEnv == "production" && c.JournalEnabled() && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	return nil
}

// ValidateForwarder — дополнительные требования режима forwarder.
func (c *Config) ValidateForwarder() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BackendURL == "" {
		return errors.New("config: BACKEND_WEBHOOK_URL or BACKEND_SERVER_URL required")
	}
	return nil
}

// ShouldProcess — фильтр событий по типу. Пропуск по фильтру — это
// осознанный no-op, отличный от raw fallback. unknown всегда true.
func (c *Config) ShouldProcess(eventType model.EventType) bool {
	switch eventType {
	case model.EventCreated:
		return c.ProcessCreated
	case model.EventUpdated:
		return c.ProcessUpdated
	default:
		return true
	}
}

// JournalEnabled — журнал отправок включается заданной базой.
func (c *Config) JournalEnabled() bool {
	return c.DB.Database != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// ParseBrokers разбивает строку брокеров "host1:9092,host2:9092" на слайс.
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
