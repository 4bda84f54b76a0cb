// Package config loads the settings of the tabula binary: an optional YAML
// file first, then TABULA_* environment variables on top.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/tabula/pkg/game"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TABULA_"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the full runtime configuration.
type Config struct {
	Log   Log    `yaml:"log" envPrefix:"LOG_"`
	Store Store  `yaml:"store" envPrefix:"STORE_"`
	HTTP  HTTP   `yaml:"http" envPrefix:"HTTP_"`
	Game  Game   `yaml:"game" envPrefix:"GAME_"`
	Redis Redis  `yaml:"redis" envPrefix:"REDIS_"`
	Crypt Crypto `yaml:"encryption" envPrefix:"ENCRYPTION_"`
	Audit Audit  `yaml:"audit" envPrefix:"AUDIT_"`
}

// Log configures the application logger.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Store selects where games are persisted.
type Store struct {
	Kind string `yaml:"kind" env:"KIND"`
	// Path is the directory of the file store or the database of the sqlite store.
	Path string `yaml:"path" env:"PATH"`
}

// Audit mirrors every saved game, with sensitive keys masked, into a file store.
// The mirror sits outside encryption at rest, so the audit copy is plaintext
// apart from the masked keys unless Encrypt is set.
type Audit struct {
	// Path enables the mirror when set.
	Path string `yaml:"path" env:"PATH"`
	// Mask lists regular expressions of setting and attribute keys to mask.
	Mask []string `yaml:"mask" env:"MASK" envSeparator:","`
	// Encrypt seals the masked copy with the encryption keys. It requires
	// encryption.key.
	Encrypt bool `yaml:"encrypt" env:"ENCRYPT"`
}

// HTTP configures the API server.
type HTTP struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Game holds table options for the hosted game.
type Game struct {
	Confirm string `yaml:"confirm" env:"CONFIRM"`
	Rounds  int    `yaml:"rounds" env:"ROUNDS"`
}

// Redis configures the redis store and distributed locking.
type Redis struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
	Lock     bool          `yaml:"lock" env:"LOCK"`
}

// Crypto enables encryption at rest.
type Crypto struct {
	// Key is a base64 AES-256 key. Empty disables encryption.
	Key string `yaml:"key" env:"KEY"`
	// FallbackKeys are older base64 keys still accepted for reading.
	FallbackKeys []string `yaml:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log:   Log{Level: "info", Format: "text"},
		Store: Store{Kind: StoreMemory},
		HTTP:  HTTP{Addr: ":8080", ShutdownTimeout: 5 * time.Second},
		Game:  Game{Confirm: game.ConfirmAlways.String(), Rounds: 6},
		Redis: Redis{Addr: "localhost:6379"},
	}
}

// Load reads path (when non-empty) over the defaults, then applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case StoreMemory, StoreRedis, StoreFile:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store kind %q", c.Store.Kind))
	}
	for _, pattern := range c.Audit.Mask {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("audit.mask: %w", err))
		}
	}
	if _, err := game.ParseConfirmPolicy(c.Game.Confirm); err != nil {
		errs = append(errs, err)
	}
	if c.Game.Rounds < 1 {
		errs = append(errs, fmt.Errorf("game.rounds must be positive, got %d", c.Game.Rounds))
	}
	if c.Crypt.Key != "" {
		if _, _, err := c.Crypt.Keys(); err != nil {
			errs = append(errs, err)
		}
	} else if c.Audit.Encrypt {
		errs = append(errs, errors.New("audit.encrypt requires encryption.key"))
	}
	return errors.Join(errs...)
}

// ConfirmPolicy returns the parsed confirm policy.
func (g Game) ConfirmPolicy() game.ConfirmPolicy {
	p, err := game.ParseConfirmPolicy(g.Confirm)
	if err != nil {
		return game.ConfirmAlways
	}
	return p
}

// Keys decodes the active and fallback keys.
func (c Crypto) Keys() (active []byte, fallback [][]byte, err error) {
	active, err = decodeKey(c.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption.key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		fk, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("encryption.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, fk)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
