package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dshills/dirsettings/internal/config/loader"
)

// EnvPrefix is the prefix of environment variables that override options.
const EnvPrefix = "DIRSETTINGS"

// Option keys.
const (
	KeySettingsFile = "settings_file"
	KeyEraseMarker  = "erase_marker"
	KeyOptOutKey    = "opt_out_key"
	KeyLogLevel     = "log_level"
	KeyDebounce     = "debounce"
)

// Options are the process-level settings.
type Options struct {
	// SettingsFile is the file name looked up in each directory.
	SettingsFile string `mapstructure:"settings_file"`

	// EraseMarker is the value meaning "unset this key".
	EraseMarker string `mapstructure:"erase_marker"`

	// OptOutKey is the session setting that disables directory settings
	// when false.
	OptOutKey string `mapstructure:"opt_out_key"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`

	// Debounce delays watcher reloads so bursts of writes reload once.
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		SettingsFile: loader.DefaultFilename,
		EraseMarker:  "#ERASE#",
		OptOutKey:    "directory_settings",
		LogLevel:     "info",
		Debounce:     100 * time.Millisecond,
	}
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()

	d := DefaultOptions()
	v.SetDefault(KeySettingsFile, d.SettingsFile)
	v.SetDefault(KeyEraseMarker, d.EraseMarker)
	v.SetDefault(KeyOptOutKey, d.OptOutKey)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyDebounce, d.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads options into v and decodes them.
// If configFile is empty, "dirsettings.{toml,yaml,json}" is searched for in
// the user config directory and the working directory; not finding one is
// not an error.
func Load(v *viper.Viper, configFile string) (Options, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dirsettings")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dirsettings"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Options{}, fmt.Errorf("%w: %w", ErrConfigFile, err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrConfigFile, err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks option values.
func (o Options) Validate() error {
	if o.SettingsFile == "" || filepath.Base(o.SettingsFile) != o.SettingsFile {
		return &OptionError{Key: KeySettingsFile, Value: o.SettingsFile, Message: "must be a plain file name"}
	}
	if o.EraseMarker == "" {
		return &OptionError{Key: KeyEraseMarker, Value: o.EraseMarker, Message: "must not be empty"}
	}
	if o.OptOutKey == "" {
		return &OptionError{Key: KeyOptOutKey, Value: o.OptOutKey, Message: "must not be empty"}
	}
	if o.Debounce < 0 {
		return &OptionError{Key: KeyDebounce, Value: o.Debounce, Message: "must not be negative"}
	}
	if _, err := ParseLogLevel(o.LogLevel); err != nil {
		return err
	}
	return nil
}
