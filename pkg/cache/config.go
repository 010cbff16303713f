package cache

import (
	"time"

	"github.com/creasty/defaults"
)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr         string        `default:"localhost:6379"`
	Password     string
	DB           int
	PoolSize     int           `default:"10"`
	PoolTimeout  time.Duration `default:"30s"`
	MinIdleConns int           `default:"2"`
	Prefix       string        `default:"stocklens"`
}

// MemoryConfig holds memory cache configuration.
type MemoryConfig struct {
	MaxSize         int           `default:"1000"`
	CleanupInterval time.Duration `default:"5m"`
}

// LayeredConfig holds layered cache configuration.
type LayeredConfig struct {
	MemoryMaxSize int           `default:"1000"`
	MemoryTTL     time.Duration `default:"1m"` // upper bound on how long L1 keeps an entry
}

type (
	RedisOption   func(*RedisConfig)
	MemoryOption  func(*MemoryConfig)
	LayeredOption func(*LayeredConfig)
)

// configure fills C from its default tags, then applies opts.
func configure[C any, O ~func(*C)](opts []O) *C {
	c := new(C)
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) { c.Addr = addr }
}

func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) { c.Password = password }
}

func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) { c.DB = db }
}

// WithRedisPool sets connection pool settings. Non-positive values keep the defaults.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		if poolSize > 0 {
			c.PoolSize = poolSize
		}
		if minIdleConns > 0 {
			c.MinIdleConns = minIdleConns
		}
		if timeout > 0 {
			c.PoolTimeout = timeout
		}
	}
}

// WithRedisPrefix namespaces every key as "<prefix>:<key>".
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) { c.Prefix = prefix }
}

// WithMemoryMaxSize bounds the entry count; the least recently used entry is evicted beyond it.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) {
		if size > 0 {
			c.MaxSize = size
		}
	}
}

func WithLayeredMemorySize(size int) LayeredOption {
	return func(c *LayeredConfig) {
		if size > 0 {
			c.MemoryMaxSize = size
		}
	}
}

// WithLayeredMemoryTTL bounds the L1 lifetime of every entry.
func WithLayeredMemoryTTL(ttl time.Duration) LayeredOption {
	return func(c *LayeredConfig) {
		if ttl > 0 {
			c.MemoryTTL = ttl
		}
	}
}
