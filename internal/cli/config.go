package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/cake/internal/paths"
	"github.com/mesh-intelligence/cake/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "CAKE"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyLogLevel     = "log_level"
	cfgKeyDefaultTheme = "default_theme"

	defaultBackend  = types.BackendSQLite
	defaultLogLevel = "warn"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	LogLevel     string `yaml:"log_level"`
	DefaultTheme string `yaml:"default_theme"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:      defaultBackend,
		LogLevel:     defaultLogLevel,
		DefaultTheme: types.DefaultThemeID,
	}
}

// loadConfig reads config.yaml from configDir using viper. It creates the
// directory and a default config.yaml on first run. Environment variables
// prefixed with CAKE_ override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), defaultConfigFile()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyDefaultTheme, types.DefaultThemeID)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with the given values if the file
// does not exist. An existing file is left alone.
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# cake CLI configuration\n# Environment variables prefixed with CAKE_ override these values.\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// defaultTheme returns the configured theme for new cakes, falling back to
// types.DefaultThemeID when the value is unknown.
func (a *app) defaultTheme() string {
	id := a.cfg.GetString(cfgKeyDefaultTheme)
	if _, ok := types.ThemeByID(id); !ok {
		return types.DefaultThemeID
	}
	return id
}
