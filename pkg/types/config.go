package types

import (
	"errors"
	"time"
)

// Config holds the storage parameters shared by the CLI and the server.
type Config struct {
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	UploadsURL string `json:"uploads_url" yaml:"uploads_url"`

	LockTimeout       time.Duration `json:"lock_timeout" yaml:"lock_timeout"`
	LockStaleAfter    time.Duration `json:"lock_stale_after" yaml:"lock_stale_after"`
	LockRetryInterval time.Duration `json:"lock_retry_interval" yaml:"lock_retry_interval"`

	// Zero values keep every backup, which is the historical behaviour.
	BackupMaxCount int           `json:"backup_max_count" yaml:"backup_max_count"`
	BackupMaxAge   time.Duration `json:"backup_max_age" yaml:"backup_max_age"`
}

// Defaults used when a Config field is left zero.
const (
	DefaultUploadsURL        = "/uploads/dishes/"
	DefaultLockTimeout       = 10 * time.Second
	DefaultLockStaleAfter    = 30 * time.Second
	DefaultLockRetryInterval = 120 * time.Millisecond
	LockFileName             = ".menu.lock"
)

// Config validation errors.
var (
	ErrDataDirEmpty        = errors.New("data directory must not be empty")
	ErrLockDurationInvalid = errors.New("lock durations must be positive")
	ErrRetentionInvalid    = errors.New("backup retention must not be negative")
)

// WithDefaults fills zero-valued fields with the package defaults.
func (c Config) WithDefaults() Config {
	if c.UploadsURL == "" {
		c.UploadsURL = DefaultUploadsURL
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.LockStaleAfter == 0 {
		c.LockStaleAfter = DefaultLockStaleAfter
	}
	if c.LockRetryInterval == 0 {
		c.LockRetryInterval = DefaultLockRetryInterval
	}
	return c
}

// Validate checks that the Config is well-formed after defaults are applied.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.LockTimeout <= 0 || c.LockStaleAfter <= 0 || c.LockRetryInterval <= 0 {
		return ErrLockDurationInvalid
	}
	if c.BackupMaxCount < 0 || c.BackupMaxAge < 0 {
		return ErrRetentionInvalid
	}
	return nil
}
