package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/workbench/internal/paths"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// envPrefix maps config keys to environment variables, e.g.
	// sqlite.busy_timeout_ms to WORKBENCH_SQLITE_BUSY_TIMEOUT_MS.
	envPrefix = "WORKBENCH"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyLogLevel    = "log_level"
	cfgKeyJournalMode = "sqlite.journal_mode"
	cfgKeyBusyTimeout = "sqlite.busy_timeout_ms"

	defaultLogLevel = "warn"
)

// configHeader precedes the generated config.yaml.
const configHeader = `# Workbench configuration.
# Every key can be overridden by an environment variable named
# WORKBENCH_<KEY>, with dots replaced by underscores.
`

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend  string             `yaml:"backend"`
	DataDir  string             `yaml:"data_dir,omitempty"`
	LogLevel string             `yaml:"log_level"`
	SQLite   types.SQLiteConfig `yaml:"sqlite"`
}

// settings is the resolved configuration for one command run.
type settings struct {
	configDir string
	store     types.Config
	logLevel  string
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureDir(configDir); err != nil {
		return nil, err
	}
	if err := writeDefaultConfig(filepath.Join(configDir, configFileExt), ""); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyJournalMode, types.DefaultJournalMode)
	v.SetDefault(cfgKeyBusyTimeout, types.DefaultBusyTimeoutMS)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDir creates the config directory if it does not exist.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return nil
}

// writeDefaultConfig creates config.yaml with default values unless the
// file already exists.
func writeDefaultConfig(path, dataDir string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:  types.BackendSQLite,
		DataDir:  dataDir,
		LogLevel: defaultLogLevel,
		SQLite: types.SQLiteConfig{
			JournalMode:   types.DefaultJournalMode,
			BusyTimeoutMS: types.DefaultBusyTimeoutMS,
		},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// loadSettings resolves directories and reads the configuration.
// Flags win over environment variables, which win over config.yaml.
func loadSettings(opts *options) (*settings, error) {
	configDir, err := paths.ResolveConfigDir(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return nil, err
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DataDir, err = paths.ResolveDataDir(opts.dataDir, v.GetString(cfgKeyDataDir)); err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	level := opts.logLevel
	if level == "" {
		level = v.GetString(cfgKeyLogLevel)
	}
	return &settings{configDir: configDir, store: cfg, logLevel: level}, nil
}
