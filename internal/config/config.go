// Package config loads kcheck settings from flags, KCHECK_* environment
// variables and an optional kcheck.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ignite/kcheck/internal/llm"
	"github.com/ignite/kcheck/internal/logger"
	"github.com/ignite/kcheck/internal/reveal"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "KCHECK"

// Oracle modes.
const (
	OracleHTTP = "http"
	OracleLLM  = "llm"
)

// Config is the complete application configuration.
type Config struct {
	Oracle  OracleConfig  `mapstructure:"oracle"`
	LLM     llm.Config    `mapstructure:"llm"`
	Reveal  RevealConfig  `mapstructure:"reveal"`
	Session SessionConfig `mapstructure:"session"`
	DB      DBConfig      `mapstructure:"db"`
	Log     logger.Config `mapstructure:"log"`
	Serve   ServeConfig   `mapstructure:"serve"`
}

// OracleConfig selects where questions and evaluations come from.
type OracleConfig struct {
	// Mode is "http" (remote Oracle service) or "llm" (in-process).
	Mode    string        `mapstructure:"mode"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RevealConfig is the typing pace of assistant messages.
type RevealConfig struct {
	Tick               time.Duration `mapstructure:"tick"`
	NewlinePauseTicks  int           `mapstructure:"newline_pause_ticks"`
	SentencePauseTicks int           `mapstructure:"sentence_pause_ticks"`
}

// Scheduler returns the reveal scheduler configuration.
func (r RevealConfig) Scheduler() reveal.Config {
	return reveal.Config{
		Tick:               r.Tick,
		NewlinePauseTicks:  r.NewlinePauseTicks,
		SentencePauseTicks: r.SentencePauseTicks,
	}
}

// SessionConfig holds assessment timing and policy.
type SessionConfig struct {
	GreetingDelay     time.Duration `mapstructure:"greeting_delay"`
	NextQuestionDelay time.Duration `mapstructure:"next_question_delay"`
	PrivilegedRoles   []string      `mapstructure:"privileged_roles"`
	CourseID          string        `mapstructure:"course_id"`
	BritishEnglish    bool          `mapstructure:"british_english"`
}

// DBConfig locates the SQLite database. An empty path uses store.DefaultDBPath.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// ServeConfig configures the Oracle HTTP service.
type ServeConfig struct {
	Addr          string `mapstructure:"addr"`
	RatePerMinute int    `mapstructure:"rate_limit"`
	Burst         int    `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("oracle.mode", OracleHTTP)
	v.SetDefault("oracle.url", "http://localhost:8787")
	v.SetDefault("oracle.timeout", 30*time.Second)

	l := llm.DefaultConfig()
	// llm.provider has no default so that an unset provider can be
	// discovered from vendor API key variables.
	_ = v.BindEnv("llm.provider")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.retry.attempt_timeout", l.Retry.AttemptTimeout)

	r := reveal.DefaultConfig()
	v.SetDefault("reveal.tick", r.Tick)
	v.SetDefault("reveal.newline_pause_ticks", r.NewlinePauseTicks)
	v.SetDefault("reveal.sentence_pause_ticks", r.SentencePauseTicks)

	v.SetDefault("session.greeting_delay", 800*time.Millisecond)
	v.SetDefault("session.next_question_delay", 1500*time.Millisecond)
	v.SetDefault("session.privileged_roles", []string{"admin", "student"})
	v.SetDefault("session.course_id", "product-manager")
	v.SetDefault("session.british_english", true)

	v.SetDefault("db.path", "")

	lg := logger.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", lg.MaxSizeMB)
	v.SetDefault("log.max_backups", lg.MaxBackups)
	v.SetDefault("log.max_age_days", lg.MaxAgeDays)

	v.SetDefault("serve.addr", ":8787")
	v.SetDefault("serve.rate_limit", 60)
	v.SetDefault("serve.burst", 10)
}

// New returns a viper instance with defaults, environment binding and the
// config file loaded. configFile overrides the search for kcheck.yaml in the
// working directory and $HOME/.config/kcheck.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("kcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kcheck")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config. When no LLM provider is configured the
// vendors' standard API key variables are checked.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.Provider == "" {
		if found, ok := llm.DiscoverConfig(cfg.LLM); ok {
			cfg.LLM = found
		} else {
			cfg.LLM.Provider = llm.ProviderAnthropic
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
// Provider credentials are checked only when a provider is built.
func (c Config) Validate() error {
	switch c.Oracle.Mode {
	case OracleHTTP:
		if c.Oracle.URL == "" {
			return errors.New("oracle.url is required in http mode")
		}
	case OracleLLM:
	default:
		return fmt.Errorf("unknown oracle mode %q (want %q or %q)", c.Oracle.Mode, OracleHTTP, OracleLLM)
	}
	if c.Reveal.Tick <= 0 {
		return errors.New("reveal.tick must be positive")
	}
	if c.Reveal.NewlinePauseTicks < 0 || c.Reveal.SentencePauseTicks < 0 {
		return errors.New("reveal pause ticks must not be negative")
	}
	if c.Serve.RatePerMinute < 0 {
		return errors.New("serve.rate_limit must not be negative")
	}
	return nil
}
