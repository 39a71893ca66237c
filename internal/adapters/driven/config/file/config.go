// Package file loads the engine configuration from a TOML file.
// Configuration is read once at startup and validated eagerly: missing
// key material is a fatal construction error, never a mid-sync failure.
package file

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/vault"
)

// defaults applied to unset optional fields.
const (
	defaultMaxPrefetchSize = 10 * 1024 * 1024
	defaultMaxRetries      = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultSyncInterval    = 15 * time.Minute
)

// Config is the engine configuration.
type Config struct {
	Vault VaultConfig `toml:"vault"`
	Sync  SyncConfig  `toml:"sync"`
	Drive DriveConfig `toml:"drive"`
}

// VaultConfig holds key material and the at-rest storage location.
type VaultConfig struct {
	// Key is the base64-encoded 256-bit symmetric key. Required.
	Key string `toml:"key"`

	// StorageRoot is where ciphertext blobs are written. Created if
	// missing.
	StorageRoot string `toml:"storage_root"`
}

// SyncConfig bounds the sync run behaviour.
type SyncConfig struct {
	// MaxPrefetchSize caps the file size considered for warm-up
	// pre-fetch, in bytes.
	MaxPrefetchSize int64 `toml:"max_prefetch_size"`

	// MaxRetries is the transient remote-error retry ceiling.
	MaxRetries uint64 `toml:"max_retries"`

	// RetryBaseDelay is the first backoff interval, e.g. "500ms".
	RetryBaseDelay Duration `toml:"retry_base_delay"`

	// Interval is the pause between sweeps in watch mode, e.g. "15m".
	Interval Duration `toml:"interval"`
}

// DriveConfig points at the remote source credentials.
type DriveConfig struct {
	// CredentialsFile is the path to the service account JSON.
	CredentialsFile string `toml:"credentials_file"`
}

// Duration is a time.Duration that unmarshals from a TOML string.
type Duration time.Duration

// UnmarshalText parses values like "500ms" or "2s".
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads and validates the configuration file. If path is empty it
// defaults to ~/.drivevault/config.toml.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".drivevault", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrConfiguration, path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfiguration, path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sync.MaxPrefetchSize == 0 {
		c.Sync.MaxPrefetchSize = defaultMaxPrefetchSize
	}
	if c.Sync.MaxRetries == 0 {
		c.Sync.MaxRetries = defaultMaxRetries
	}
	if c.Sync.RetryBaseDelay == 0 {
		c.Sync.RetryBaseDelay = Duration(defaultRetryBaseDelay)
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = Duration(defaultSyncInterval)
	}
	if c.Vault.StorageRoot == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Vault.StorageRoot = filepath.Join(home, ".drivevault", "encrypted")
		}
	}
}

// Validate checks the configuration for fatal problems. Absent or
// undecodable key material fails here so no sync can start without it.
func (c *Config) Validate() error {
	if c.Vault.Key == "" {
		return fmt.Errorf("%w: vault.key is required", domain.ErrConfiguration)
	}
	key, err := base64.StdEncoding.DecodeString(c.Vault.Key)
	if err != nil {
		return fmt.Errorf("%w: vault.key is not valid base64", domain.ErrConfiguration)
	}
	if len(key) != vault.KeySize {
		return fmt.Errorf("%w: vault.key must decode to %d bytes", domain.ErrConfiguration, vault.KeySize)
	}
	return nil
}
