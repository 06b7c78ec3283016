// Config loading for the urlcoupons CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
	"github.com/mesh-intelligence/urlcoupons/pkg/urlcoupons"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	dotEnvFile     = ".env"
	envPrefix      = "URLCOUPONS"

	// Directories used under the working directory when nothing else is set.
	defaultConfigDirName = ".urlcoupons"
	defaultDataDirName   = ".urlcoupons-db"

	envConfigDir = envPrefix + "_CONFIG_DIR"
	envDataDir   = envPrefix + "_DATA_DIR"
)

// Config keys.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyDSN           = "dsn"
	cfgKeyTablePrefix   = "table_prefix"
	cfgKeyWCVersion     = "wc_version"
	cfgKeyPluginVersion = "plugin_version"
	cfgKeyRedisAddr     = "redis_addr"
	cfgKeyRedisPassword = "redis_password"
	cfgKeyRedisDB       = "redis_db"
	cfgKeyRedisPrefix   = "redis_prefix"
	cfgKeySyncStrategy  = "sqlite.sync_strategy"
)

// flagKeys binds global flags to config keys.
var flagKeys = map[string]string{
	"backend":        cfgKeyBackend,
	"data-dir":       cfgKeyDataDir,
	"dsn":            cfgKeyDSN,
	"table-prefix":   cfgKeyTablePrefix,
	"wc-version":     cfgKeyWCVersion,
	"plugin-version": cfgKeyPluginVersion,
	"redis-addr":     cfgKeyRedisAddr,
}

// configFile is the structure written to config.yaml on first run.
type configFile struct {
	Backend     string              `yaml:"backend"`
	DataDir     string              `yaml:"data_dir,omitempty"`
	TablePrefix string              `yaml:"table_prefix,omitempty"`
	SQLite      *types.SQLiteConfig `yaml:"sqlite,omitempty"`
}

// loadConfig reads config.yaml from configDir using Viper, layering
// URLCOUPONS_* environment variables and the bound flags on top. It
// creates the directory and a default config.yaml on first run.
func loadConfig(configDir string, fs *pflag.FlagSet) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyTablePrefix, types.DefaultTablePrefix)
	v.SetDefault(cfgKeyPluginVersion, urlcoupons.PluginVersion)
	v.SetDefault(cfgKeyRedisDB, 0)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		Backend:     types.BackendSQLite,
		TablePrefix: types.DefaultTablePrefix,
		SQLite:      &types.SQLiteConfig{SyncStrategy: types.SyncImmediate},
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# urlcoupons configuration. Flags and URLCOUPONS_* variables override these values.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// loadDotEnv loads .env from the working directory and the config
// directory. Variables already set in the environment win.
func loadDotEnv(configDir string) error {
	var files []string
	for _, path := range []string{dotEnvFile, filepath.Join(configDir, dotEnvFile)} {
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(files, ", "), err)
	}
	return nil
}

// resolveConfigDir picks --config-dir, then URLCOUPONS_CONFIG_DIR, then
// ./.urlcoupons.
func (a *app) resolveConfigDir() (string, error) {
	return resolveDir(defaultConfigDirName, a.flags.configDir, os.Getenv(envConfigDir))
}

// resolveDataDir picks --data-dir, then data_dir as viper resolves it from
// the environment or config.yaml, then ./.urlcoupons-db.
func (a *app) resolveDataDir() (string, error) {
	return resolveDir(defaultDataDirName, a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir), os.Getenv(envDataDir))
}

// resolveDir returns the first non-empty candidate as an absolute path, or
// name under the working directory.
func resolveDir(name string, candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}

// siteConfig assembles the store configuration from flags, environment and
// config.yaml.
func (a *app) siteConfig() (types.Config, error) {
	cfg := types.Config{
		Backend:     a.cfg.GetString(cfgKeyBackend),
		DSN:         a.cfg.GetString(cfgKeyDSN),
		TablePrefix: a.cfg.GetString(cfgKeyTablePrefix),
		SQLiteConfig: &types.SQLiteConfig{
			SyncStrategy: a.cfg.GetString(cfgKeySyncStrategy),
		},
	}
	if cfg.Backend == types.BackendSQLite {
		dataDir, err := a.resolveDataDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dataDir
	}
	return cfg, nil
}
