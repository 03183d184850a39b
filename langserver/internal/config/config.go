// Package config loads copilotls settings from a JSON file, the environment
// and defaults, in increasing order of precedence from defaults to environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const appName = "copilotls"

type Config struct {
	Remote     Remote     `mapstructure:"remote"`
	Completion Completion `mapstructure:"completion"`
	Secrets    Secrets    `mapstructure:"secrets"`
	Telemetry  Telemetry  `mapstructure:"telemetry"`
	Log        Log        `mapstructure:"log"`
}

type Remote struct {
	// Address is tcp://host:port. When empty Command is spawned instead.
	Address string        `mapstructure:"address"`
	Command []string      `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type Completion struct {
	TriggerCharacters []string `mapstructure:"triggerCharacters" validate:"min=1,dive,required"`
	RequestsPerMinute int      `mapstructure:"requestsPerMinute" validate:"gte=0"`
	// Debounce is how long inline completions and completion commands wait
	// for the editor to stop asking. Zero sends every request.
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

type Secrets struct {
	Path string `mapstructure:"path"`
	// Ephemeral keeps the token in memory only.
	Ephemeral bool `mapstructure:"ephemeral"`
}

type Telemetry struct {
	Enabled     bool          `mapstructure:"enabled"`
	MetricsFile string        `mapstructure:"metricsFile"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
	File  string `mapstructure:"file"`
	Trace bool   `mapstructure:"trace"`
}

// Load reads the configuration. path overrides the config file search; when
// verbose is set the log level is forced to debug.
func Load(path string, verbose bool) (*Config, error) {
	v := viper.New()
	configure(v, path)
	setDefaults(v)

	if err := readConfig(v.ReadInConfig()); err != nil {
		return nil, err
	}

	if verbose {
		v.Set("log.level", "debug")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configure(v *viper.Viper, path string) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	}
	v.SetConfigType("json")
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("remote.address", "tcp://localhost:8080")
	v.SetDefault("remote.command", []string{})
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("completion.triggerCharacters", []string{"."})
	v.SetDefault("completion.requestsPerMinute", 60)
	v.SetDefault("completion.debounce", 300*time.Millisecond)
	v.SetDefault("secrets.path", "")
	v.SetDefault("secrets.ephemeral", false)
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.metricsFile", "")
	v.SetDefault("telemetry.interval", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.trace", false)
}

func readConfig(err error) error {
	if err == nil {
		return nil
	}

	// It's okay if the config file doesn't exist
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("failed to read config: %w", err)
}

func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterStructValidation(validateRemote, Remote{})
	return validate.Struct(cfg)
}

func validateRemote(sl validator.StructLevel) {
	remote := sl.Current().Interface().(Remote)
	if remote.Address == "" && len(remote.Command) == 0 {
		sl.ReportError(remote.Address, "Address", "address", "address_or_command", "")
	}
}
