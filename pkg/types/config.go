package types

import "errors"

// Config holds backend selection and parameters for Site.Attach.
type Config struct {
	Backend      string        `json:"backend" yaml:"backend"`
	DataDir      string        `json:"data_dir" yaml:"data_dir"`
	DSN          string        `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	TablePrefix  string        `json:"table_prefix,omitempty" yaml:"table_prefix,omitempty"`
	SQLiteConfig *SQLiteConfig `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
}

// SQLiteConfig tunes the local SQLite store.
type SQLiteConfig struct {
	// SyncStrategy controls when JSONL files are written: immediate or on_close.
	SyncStrategy string `json:"sync_strategy,omitempty" yaml:"sync_strategy,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite    = "sqlite"
	BackendWordPress = "wordpress"
)

// Sync strategies for the SQLite store.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
)

// DefaultTablePrefix is the WordPress default $table_prefix.
const DefaultTablePrefix = "wp_"

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrDSNRequired         = errors.New("wordpress backend requires a dsn")
	ErrSyncStrategyUnknown = errors.New("unknown sync strategy")
	ErrInvalidVersion      = errors.New("invalid version string")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:    true,
	BackendWordPress: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendWordPress && c.DSN == "" {
		return ErrDSNRequired
	}
	if c.SQLiteConfig != nil {
		switch c.SQLiteConfig.SyncStrategy {
		case "", SyncImmediate, SyncOnClose:
		default:
			return ErrSyncStrategyUnknown
		}
	}
	return nil
}

// GetSyncStrategy returns the effective sync strategy, defaulting to immediate.
func (s *SQLiteConfig) GetSyncStrategy() string {
	if s == nil || s.SyncStrategy == "" {
		return SyncImmediate
	}
	return s.SyncStrategy
}

// GetTablePrefix returns the table prefix, defaulting to DefaultTablePrefix.
func (c Config) GetTablePrefix() string {
	if c.TablePrefix == "" {
		return DefaultTablePrefix
	}
	return c.TablePrefix
}
