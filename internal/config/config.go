package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	AllowOrigins    []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
	Migrate  bool
}

type QueueConfig struct {
	RedisDB     int
	Concurrency int
	MaxRetry    int
	TaskTimeout time.Duration
}

type CacheConfig struct {
	ServicesTTL  time.Duration
	ProvidersTTL time.Duration
	ScheduleTTL  time.Duration
}

type DashboardConfig struct {
	// OptimisticWindow is how long a locally submitted booking survives a
	// refresh that does not contain it yet.
	OptimisticWindow time.Duration
	SessionTTL       time.Duration
	SubmissionTTL    time.Duration
	SubmitLimit      int
	SubmitWindow     time.Duration
	IdempotencyTTL   time.Duration
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSLMode,
	)
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shutdownTimeout, err := durationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host:            serverHost,
		Port:            serverPort,
		ShutdownTimeout: shutdownTimeout,
		AllowOrigins:    listEnv("CORS_ALLOW_ORIGINS"),
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresMaxConns, err := intEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresMigrate, err := boolEnv("POSTGRES_MIGRATE", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
		MaxConns: int32(postgresMaxConns),
		Migrate:  postgresMigrate,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	queueCfg, err := newQueueConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheCfg, err := newCacheConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dashboardCfg, err := newDashboardConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:    serverCfg,
		Postgres:  postgresCfg,
		Redis:     redisCfg,
		Queue:     queueCfg,
		Cache:     cacheCfg,
		Dashboard: dashboardCfg,
	}, nil
}

func newQueueConfig() (QueueConfig, error) {
	var (
		cfg QueueConfig
		err error
	)

	if cfg.RedisDB, err = intEnv("REDIS_QUEUE_DB", 1); err != nil {
		return cfg, err
	}
	if cfg.Concurrency, err = intEnv("QUEUE_CONCURRENCY", 10); err != nil {
		return cfg, err
	}
	if cfg.MaxRetry, err = intEnv("QUEUE_MAX_RETRY", 5); err != nil {
		return cfg, err
	}
	if cfg.TaskTimeout, err = durationEnv("QUEUE_TASK_TIMEOUT", 30*time.Second); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newCacheConfig() (CacheConfig, error) {
	var (
		cfg CacheConfig
		err error
	)

	if cfg.ServicesTTL, err = durationEnv("CACHE_SERVICES_TTL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.ProvidersTTL, err = durationEnv("CACHE_PROVIDERS_TTL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.ScheduleTTL, err = durationEnv("CACHE_SCHEDULE_TTL", 15*time.Second); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newDashboardConfig() (DashboardConfig, error) {
	var (
		cfg DashboardConfig
		err error
	)

	if cfg.OptimisticWindow, err = durationEnv("DASHBOARD_OPTIMISTIC_WINDOW", 5*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.SessionTTL, err = durationEnv("DASHBOARD_SESSION_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.SubmissionTTL, err = durationEnv("SUBMISSION_GUARD_TTL", 2*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.SubmitLimit, err = intEnv("SUBMISSION_RATE_LIMIT", 10); err != nil {
		return cfg, err
	}
	if cfg.SubmitWindow, err = durationEnv("SUBMISSION_RATE_WINDOW", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", 2*time.Hour); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}

	return v, nil
}

// listEnv splits a comma separated value, dropping blanks.
func listEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func boolEnv(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}
