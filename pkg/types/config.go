package types

import (
	"errors"
	"strings"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string       `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string       `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	SQLite  SQLiteConfig `json:"sqlite" yaml:"sqlite" mapstructure:"sqlite"`
}

// SQLiteConfig tunes the SQLite connection. Zero values select defaults.
type SQLiteConfig struct {
	JournalMode   string `json:"journal_mode" yaml:"journal_mode" mapstructure:"journal_mode"`
	BusyTimeoutMS int    `json:"busy_timeout_ms" yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// SQLite journal modes accepted by Validate.
const (
	JournalWAL    = "wal"
	JournalDelete = "delete"
	JournalMemory = "memory"
)

// Defaults applied by the SQLiteConfig getters.
const (
	DefaultJournalMode   = JournalWAL
	DefaultBusyTimeoutMS = 5000
)

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrJournalModeUnknown  = errors.New("unknown journal mode")
	ErrBusyTimeoutNegative = errors.New("busy timeout must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownJournalModes = map[string]bool{
	JournalWAL:    true,
	JournalDelete: true,
	JournalMemory: true,
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
	if c.SQLite.JournalMode != "" && !knownJournalModes[strings.ToLower(c.SQLite.JournalMode)] {
		return ErrJournalModeUnknown
	}
	if c.SQLite.BusyTimeoutMS < 0 {
		return ErrBusyTimeoutNegative
	}
	return nil
}

// GetJournalMode returns the configured journal mode, lower-cased, or the
// default.
func (s SQLiteConfig) GetJournalMode() string {
	if s.JournalMode == "" {
		return DefaultJournalMode
	}
	return strings.ToLower(s.JournalMode)
}

// GetBusyTimeoutMS returns the configured busy timeout or the default.
func (s SQLiteConfig) GetBusyTimeoutMS() int {
	if s.BusyTimeoutMS == 0 {
		return DefaultBusyTimeoutMS
	}
	return s.BusyTimeoutMS
}
