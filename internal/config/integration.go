package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rshade/pagerkit/internal/logging"
)

// global is the configuration of the running command. The CLI installs it
// once per invocation; anything reading it before that gets New().
//
//nolint:gochecknoglobals // Process-wide configuration.
var global struct {
	sync.RWMutex
	cfg *Config
}

// SetGlobalConfig installs cfg as the configuration of this run. A nil cfg
// makes the next GetGlobalConfig rebuild it from disk.
func SetGlobalConfig(cfg *Config) {
	global.Lock()
	defer global.Unlock()
	global.cfg = cfg
}

// ResetGlobalConfigForTest drops the installed configuration.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}

// GetGlobalConfig returns the installed configuration, loading it with New
// on first use.
func GetGlobalConfig() *Config {
	global.RLock()
	cfg := global.cfg
	global.RUnlock()
	if cfg != nil {
		return cfg
	}

	global.Lock()
	defer global.Unlock()
	if global.cfg == nil {
		global.cfg = New()
	}
	return global.cfg
}

// GetLoggingConfig returns the logging section of the global configuration.
// Overrides such as --debug are applied by the caller.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}

// ToLoggingConfig converts the section for logging.NewLoggerWithPath. A
// configured file switches output to that file; otherwise logs go to stderr.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	out := logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: logging.OutputStderr,
	}
	if lc.File != "" {
		out.Output = logging.OutputFile
		out.File = lc.File
	}
	return out
}

// EnsureLogDir creates the parent directory of the configured log file. It
// does nothing when no log file is configured.
func EnsureLogDir() error {
	file := GetLoggingConfig().File
	if file == "" {
		return nil
	}
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	return nil
}

// GetConfigDir returns the pagerkit configuration directory: $PAGERKIT_HOME
// when set, ~/.pagerkit otherwise.
func GetConfigDir() (string, error) {
	if home := os.Getenv("PAGERKIT_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pagerkit"), nil
}

// GetConfigPath returns the path of the global config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
