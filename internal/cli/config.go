package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tasktree/internal/paths"
	"github.com/mesh-intelligence/tasktree/pkg/types"
)

// Config keys.
const (
	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyOwner      = "owner"
	cfgKeyListenAddr = "listen_addr"
	cfgKeyLogLevel   = "log_level"
)

// Defaults.
const (
	defaultBackend    = types.BackendSQLite
	defaultListenAddr = "127.0.0.1:8080"
	defaultLogLevel   = "warn"
)

// envPrefix is prepended to upper-cased config keys for env overrides.
const envPrefix = "TASKTREE"

// settings is the resolved configuration for one invocation.
type settings struct {
	ConfigDir  string
	DataDir    string
	Backend    string
	Owner      string
	ListenAddr string
	LogLevel   string
}

// loadConfig reads config.yaml from configDir with viper. A missing file is
// not an error. backend, owner, listen_addr and log_level may be overridden
// by TASKTREE_* env vars; data_dir is left to paths.ResolveDataDir so the
// config file outranks TASKTREE_DATA_DIR.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyListenAddr, defaultListenAddr)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetEnvPrefix(envPrefix)
	for _, k := range []string{cfgKeyBackend, cfgKeyOwner, cfgKeyListenAddr, cfgKeyLogLevel} {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// load resolves directories and settings and builds the logger.
func (a *app) load() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	a.settings = settings{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		Backend:    v.GetString(cfgKeyBackend),
		Owner:      firstNonEmpty(a.flags.owner, v.GetString(cfgKeyOwner)),
		ListenAddr: v.GetString(cfgKeyListenAddr),
		LogLevel:   firstNonEmpty(a.flags.logLevel, v.GetString(cfgKeyLogLevel)),
	}
	a.log = newLogger(a.settings.LogLevel, false, a.stderr)
	a.log.Debug("configuration loaded", "config_dir", configDir, "data_dir", dataDir, "backend", a.settings.Backend)
	return nil
}

// requireOwner returns the configured owner or a user error.
func (a *app) requireOwner() (string, error) {
	if a.settings.Owner == "" {
		return "", userError("no owner: pass --owner or set owner in %s", paths.ConfigFile(a.settings.ConfigDir))
	}
	return a.settings.Owner, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
