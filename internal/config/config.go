package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Rewards  RewardsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Brokers         []string
	EventsTopic     string
	VotesTopic      string
	PortfoliosTopic string
	ConsumerGroup   string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig holds the static admin list consulted for reviewer actions
type AuthConfig struct {
	AdminUserIDs []string
}

// RewardsConfig holds point amounts and the measurement trade window
type RewardsConfig struct {
	CreatedPoints     int
	ApprovedPoints    int
	AppliedPoints     int
	VotePoints        int
	MeasurementWindow int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8082"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "postgres"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "trader"),
			Password: getEnv("DB_PASSWORD", "trader5"),
			DBName:   getEnv("DB_NAME", "trading_platform"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:         parseBrokers(getEnv("KAFKA_BROKERS", "localhost:19092")),
			EventsTopic:     getEnv("KAFKA_EVENTS_TOPIC", "suggestion.events"),
			VotesTopic:      getEnv("KAFKA_VOTES_TOPIC", "suggestion.votes"),
			PortfoliosTopic: getEnv("KAFKA_PORTFOLIOS_TOPIC", "trading.portfolios"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "suggestion-service"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		},
		Auth: AuthConfig{
			AdminUserIDs: parseList(getEnv("ADMIN_USER_IDS", "")),
		},
		Rewards: RewardsConfig{
			CreatedPoints:     getEnvInt("REWARD_CREATED_POINTS", 10),
			ApprovedPoints:    getEnvInt("REWARD_APPROVED_POINTS", 50),
			AppliedPoints:     getEnvInt("REWARD_APPLIED_POINTS", 100),
			VotePoints:        getEnvInt("REWARD_VOTE_POINTS", 2),
			MeasurementWindow: getEnvInt("MEASUREMENT_WINDOW_TRADES", 50),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	return parseList(brokers)
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}
