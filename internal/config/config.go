// Package config loads studyaudit configuration from a config file, a
// .env file and STUDYAUDIT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/studyaudit/internal/llm"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STUDYAUDIT"

// Config is the full application configuration.
type Config struct {
	// DB is the sqlite database path. Empty means the default data path.
	DB  string     `mapstructure:"db"`
	Log LogConfig  `mapstructure:"log"`
	LLM llm.Config `mapstructure:"llm"`
}

// LogConfig configures the file logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File is the log file path. Empty means studyaudit.log next to the
	// database.
	File string `mapstructure:"file"`
}

// Load reads configuration. configFile, when set, must exist; otherwise
// studyaudit.yaml is looked up in the working directory and the user
// config directory.
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("studyaudit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "studyaudit"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	// Fall back to the standard provider API key variables.
	if discovered, ok := cfg.LLM.Discover(); ok {
		cfg.LLM = discovered
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("llm.provider", d.Provider)
	for name, pc := range map[string]llm.ProviderConfig{
		"gemini":     d.Gemini,
		"anthropic":  d.Anthropic,
		"openai":     d.OpenAI,
		"openrouter": d.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", pc.APIKey)
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".pro_model", pc.ProModel)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}

	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.retry.jitter", d.Retry.Jitter)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.max_tokens", d.MaxTokens)
}
