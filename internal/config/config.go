package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration from the optional config file and environment.
type Config struct {
	HTTPPort            string   `toml:"http_port"`
	HTTPWriteTimeoutSec int      `toml:"http_write_timeout_sec"`
	DatabaseURL         string   `toml:"database_url"`
	DBPoolSize          int      `toml:"db_pool_size"`
	RedisURL            string   `toml:"redis_url"`
	RedisPoolSize       int      `toml:"redis_pool_size"`
	CacheTTL            int      `toml:"cache_ttl_sec"` // seconds
	KafkaBrokers        []string `toml:"kafka_brokers"`
	KafkaTopic          string   `toml:"kafka_topic"`
	KafkaPartitions     int      `toml:"kafka_partitions"`
	LLMAPIKey           string   `toml:"llm_api_key"`
	LLMBaseURL          string   `toml:"llm_base_url"`
	LLMModel            string   `toml:"llm_model"`
	LogLevel            string   `toml:"log_level"`
}

const (
	DefaultDatabaseURL = "sqlite:///./todos.db"
	DefaultLLMBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultLLMModel    = "gemini-2.5-flash"
)

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once). A broken CONFIG_FILE is fatal.
func Get() *Config {
	cfgOnce.Do(func() {
		c, err := Load(os.Getenv("CONFIG_FILE"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
		cfg = c
	})
	return cfg
}

// Load builds a Config from defaults, then the TOML file at path (if non-empty), then env.
func Load(path string) (*Config, error) {
	c := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	applyEnv(c)
	return c, nil
}

func defaults() *Config {
	return &Config{
		HTTPPort:            "8080",
		HTTPWriteTimeoutSec: 120,
		DatabaseURL:         DefaultDatabaseURL,
		DBPoolSize:          10,
		RedisPoolSize:       50,
		CacheTTL:            300,
		KafkaTopic:          "todo-events",
		KafkaPartitions:     4,
		LLMBaseURL:          DefaultLLMBaseURL,
		LLMModel:            DefaultLLMModel,
		LogLevel:            "info",
	}
}

func applyEnv(c *Config) {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.HTTPWriteTimeoutSec = getIntEnv("HTTP_WRITE_TIMEOUT_SEC", c.HTTPWriteTimeoutSec)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBPoolSize = getIntEnv("DB_POOL_SIZE", c.DBPoolSize)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.RedisPoolSize = getIntEnv("REDIS_POOL_SIZE", c.RedisPoolSize)
	c.CacheTTL = getIntEnv("CACHE_TTL_SEC", c.CacheTTL)
	c.KafkaBrokers = getSliceEnv("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnv("KAFKA_TODO_TOPIC", c.KafkaTopic)
	c.KafkaPartitions = getIntEnv("KAFKA_PARTITIONS", c.KafkaPartitions)
	c.LLMAPIKey = getEnv("GEMINI_API_KEY", c.LLMAPIKey)
	c.LLMBaseURL = getEnv("LLM_BASE_URL", c.LLMBaseURL)
	c.LLMModel = getEnv("LLM_MODEL", c.LLMModel)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// getSliceEnv splits a comma-separated value, dropping blanks.
func getSliceEnv(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
