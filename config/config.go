package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Engine   EngineConfig   `yaml:"engine"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
	// RateLimit is requests per second per client IP; 0 disables the limiter.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	OperationsTopic string   `yaml:"operations_topic"`
	GroupID         string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.OperationsTopic != ""
}

type EngineConfig struct {
	SnapshotCacheTTLSeconds int    `yaml:"snapshot_cache_ttl_seconds"`
	GuideLockTTLSeconds     int    `yaml:"guide_lock_ttl_seconds"`
	BlockReasonPrefix       string `yaml:"block_reason_prefix"`
	OperationsPageSize      int    `yaml:"operations_page_size"`
}

func (e EngineConfig) SnapshotTTL() time.Duration {
	return time.Duration(e.SnapshotCacheTTLSeconds) * time.Second
}

func (e EngineConfig) GuideLockTTL() time.Duration {
	return time.Duration(e.GuideLockTTLSeconds) * time.Second
}

type WorkerConfig struct {
	HeartbeatSeconds int `yaml:"heartbeat_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the values used for keys the file leaves out.
func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Address: ":8080", RateLimit: 20, RateBurst: 40},
		Storage: StorageConfig{Driver: StorageMemory},
		Kafka:   KafkaConfig{OperationsTopic: "seat-operations", GroupID: "seat-audit"},
		Engine: EngineConfig{
			SnapshotCacheTTLSeconds: 30,
			GuideLockTTLSeconds:     10,
			BlockReasonPrefix:       "Reiseleiter",
			OperationsPageSize:      200,
		},
		Worker: WorkerConfig{HeartbeatSeconds: 60},
		Log:    LogConfig{Level: "info"},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Engine.BlockReasonPrefix == "" {
		return fmt.Errorf("engine.block_reason_prefix must not be empty")
	}
	if c.Engine.GuideLockTTLSeconds <= 0 {
		return fmt.Errorf("engine.guide_lock_ttl_seconds must be positive")
	}
	if c.Engine.SnapshotCacheTTLSeconds <= 0 {
		return fmt.Errorf("engine.snapshot_cache_ttl_seconds must be positive")
	}
	if c.Worker.HeartbeatSeconds <= 0 {
		return fmt.Errorf("worker.heartbeat_seconds must be positive")
	}
	return nil
}
