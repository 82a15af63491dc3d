package queue

import (
	"time"

	"github.com/hibiken/asynq"
)

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Concurrency int
	MaxRetry    int
	TaskTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}

	if c.MaxRetry < 0 {
		c.MaxRetry = 0
	}

	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 30 * time.Second
	}

	return c
}

func (c Config) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
