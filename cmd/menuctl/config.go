package main

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/chero-kobuleti/menu/internal/auth"
	"github.com/chero-kobuleti/menu/internal/logger"
	"github.com/chero-kobuleti/menu/internal/paths"
	"github.com/chero-kobuleti/menu/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "MENU"
)

// Config keys.
const (
	cfgKeyDataDir           = "data_dir"
	cfgKeyUploadsURL        = "uploads_url"
	cfgKeyLockTimeout       = "lock.timeout"
	cfgKeyLockStaleAfter    = "lock.stale_after"
	cfgKeyLockRetry         = "lock.retry_interval"
	cfgKeyBackupMaxCount    = "backups.max_count"
	cfgKeyBackupMaxAge      = "backups.max_age"
	cfgKeyServerAddr        = "server.addr"
	cfgKeyServerSecure      = "server.secure_cookies"
	cfgKeyServerProxies     = "server.trusted_proxies"
	cfgKeyAdminPassword     = "admin.password"
	cfgKeyAdminPasswordHash = "admin.password_hash"
	cfgKeyAdminSecret       = "admin.secret"
	cfgKeyAdminSessionTTL   = "admin.session_ttl"
	cfgKeyAdminLoginRate    = "admin.login_rate"
	cfgKeyLogLevel          = "log.level"
	cfgKeyLogFormat         = "log.format"
)

// defaultConfigYAML is written to config.yaml on first run. Secrets are left
// to the environment.
const defaultConfigYAML = `# menuctl configuration

# Data directory holding categories.json and dishes.json
# (overridable by --data-dir or MENU_DATA_DIR).
# data_dir: ./data

uploads_url: /uploads/dishes/

lock:
  timeout: 10s
  stale_after: 30s
  retry_interval: 120ms

# Zero keeps every backup.
backups:
  max_count: 0
  max_age: 0s

server:
  addr: ":8080"
  secure_cookies: false
  # Reverse proxies (IPs or CIDRs) allowed to set X-Forwarded-For.
  # Empty means clients are identified by their socket address.
  trusted_proxies: []

# admin.password, admin.password_hash and admin.secret are read from
# MENU_ADMIN_PASSWORD / ADMIN_PASSWORD, MENU_ADMIN_PASSWORD_HASH and
# MENU_ADMIN_SECRET / ADMIN_SECRET.
admin:
  session_ttl: 336h
  login_rate: 5

log:
  level: info
  format: console
`

// envKeys are the keys overridable from MENU_* variables. data_dir is
// resolved separately by the paths package.
var envKeys = []string{
	cfgKeyUploadsURL, cfgKeyLockTimeout, cfgKeyLockStaleAfter, cfgKeyLockRetry,
	cfgKeyBackupMaxCount, cfgKeyBackupMaxAge, cfgKeyServerAddr, cfgKeyServerSecure, cfgKeyServerProxies,
	cfgKeyAdminPasswordHash, cfgKeyAdminSessionTTL, cfgKeyAdminLoginRate,
	cfgKeyLogLevel, cfgKeyLogFormat,
}

// loadConfig reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run. A missing config.yaml is not an
// error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: ensure config dir: %w", types.ErrIO, err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("%w: ensure default config: %w", types.ErrIO, err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyUploadsURL, types.DefaultUploadsURL)
	v.SetDefault(cfgKeyLockTimeout, types.DefaultLockTimeout)
	v.SetDefault(cfgKeyLockStaleAfter, types.DefaultLockStaleAfter)
	v.SetDefault(cfgKeyLockRetry, types.DefaultLockRetryInterval)
	v.SetDefault(cfgKeyServerAddr, ":8080")
	v.SetDefault(cfgKeyAdminSessionTTL, auth.DefaultSessionTTL)
	v.SetDefault(cfgKeyAdminLoginRate, 5)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, "console")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	// The deployment this replaces used unprefixed names for the secrets.
	if err := v.BindEnv(cfgKeyAdminPassword, "MENU_ADMIN_PASSWORD", "ADMIN_PASSWORD"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(cfgKeyAdminSecret, "MENU_ADMIN_SECRET", "ADMIN_SECRET"); err != nil {
		return nil, err
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("%w: read config: %w", types.ErrParse, err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// settings is the resolved configuration of one menuctl invocation.
type settings struct {
	Store         types.Config
	ServerAddr     string
	SecureCookies  bool
	TrustedProxies []string
	Auth          auth.Config
	// LoginRate is login attempts per minute per client address.
	LoginRate float64
	Log       logger.Config
}

// newSettings resolves the data directory (flag > config > env > default)
// and validates the storage parameters.
func newSettings(v *viper.Viper, dataDirFlag string) (*settings, error) {
	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, err
	}
	s := &settings{
		Store: types.Config{
			DataDir:           dataDir,
			UploadsURL:        v.GetString(cfgKeyUploadsURL),
			LockTimeout:       v.GetDuration(cfgKeyLockTimeout),
			LockStaleAfter:    v.GetDuration(cfgKeyLockStaleAfter),
			LockRetryInterval: v.GetDuration(cfgKeyLockRetry),
			BackupMaxCount:    v.GetInt(cfgKeyBackupMaxCount),
			BackupMaxAge:      v.GetDuration(cfgKeyBackupMaxAge),
		},
		ServerAddr:     v.GetString(cfgKeyServerAddr),
		SecureCookies:  v.GetBool(cfgKeyServerSecure),
		TrustedProxies: v.GetStringSlice(cfgKeyServerProxies),
		Auth: auth.Config{
			Password:     v.GetString(cfgKeyAdminPassword),
			PasswordHash: v.GetString(cfgKeyAdminPasswordHash),
			Secret:       v.GetString(cfgKeyAdminSecret),
			SessionTTL:   v.GetDuration(cfgKeyAdminSessionTTL),
		},
		LoginRate: v.GetFloat64(cfgKeyAdminLoginRate),
		Log: logger.Config{
			Level:  v.GetString(cfgKeyLogLevel),
			Format: v.GetString(cfgKeyLogFormat),
		},
	}
	if err := s.Store.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrValidation, err)
	}
	if s.LoginRate <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", types.ErrValidation, cfgKeyAdminLoginRate)
	}
	for _, p := range s.TrustedProxies {
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not an IP or CIDR", types.ErrValidation, cfgKeyServerProxies, p)
		}
	}
	return s, nil
}

// loginLimit converts LoginRate to a token bucket refill rate.
func (s *settings) loginLimit() rate.Limit {
	return rate.Limit(s.LoginRate / time.Minute.Seconds())
}
