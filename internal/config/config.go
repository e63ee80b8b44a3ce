// Package config loads CLI configuration from an optional YAML file and
// QUIZGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/abhisek/quizgen/internal/llm"
	"github.com/abhisek/quizgen/internal/logger"
	"github.com/abhisek/quizgen/internal/quizgen"
)

// EnvPrefix is prepended to every environment key: llm.openai.api_key is
// read from QUIZGEN_LLM_OPENAI_API_KEY.
const EnvPrefix = "QUIZGEN"

// Config is the full CLI configuration.
type Config struct {
	LLM       llm.Config     `mapstructure:"llm"`
	Generator quizgen.Config `mapstructure:"generator"`
	Log       logger.Config  `mapstructure:"log"`

	// DBPath is the request event database. Empty means store.DefaultDBPath.
	DBPath string `mapstructure:"db"`
}

// keys without a default that may still come from the environment.
var envOnlyKeys = []string{
	"llm.provider",
	"llm.anthropic.api_key",
	"llm.openai.api_key",
	"llm.openai.base_url",
	"llm.gemini.api_key",
	"llm.openrouter.api_key",
	"llm.openrouter.base_url",
	"db",
}

// standardKeys maps providers to the API key variables their own SDKs read.
var standardKeys = map[string]string{
	"anthropic":  "ANTHROPIC_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"gemini":     "GEMINI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

// Load reads configuration. path names a YAML file; when empty, quizgen.yaml
// is looked up in the working directory and $XDG_CONFIG_HOME/quizgen, and a
// missing file is not an error.
//
// When no provider is configured, the first standard API key variable found
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY)
// picks it. An empty API key for the selected provider is filled from its
// standard variable.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("quizgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "quizgen"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	resolveProvider(&cfg.LLM)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.ollama.server_url", l.Ollama.ServerURL)
	v.SetDefault("llm.ollama.model", l.Ollama.Model)

	g := quizgen.DefaultConfig()
	v.SetDefault("generator.max_tokens", g.MaxTokens)
	v.SetDefault("generator.native_schema", g.NativeSchema)
	v.SetDefault("generator.max_parallel", g.MaxParallel)

	lg := logger.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.env", lg.Env)
}

func resolveProvider(c *llm.Config) {
	if c.Provider == "" {
		if discovered, ok := llm.DiscoverConfig(); ok {
			c.Provider = discovered.Provider
		} else {
			c.Provider = llm.DefaultConfig().Provider
		}
	}
	if c.HasCredentials() {
		return
	}

	key := os.Getenv(standardKeys[c.Provider])
	if key == "" {
		return
	}
	switch c.Provider {
	case "anthropic":
		c.Anthropic.APIKey = key
	case "openai":
		c.OpenAI.APIKey = key
	case "gemini":
		c.Gemini.APIKey = key
	case "openrouter":
		c.OpenRouter.APIKey = key
	}
}
