// Package config loads the agent configuration from a YAML file, .env files
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Chan-Developer/ReAct-agent/logging"
	"github.com/Chan-Developer/ReAct-agent/parser"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "reactagent.yaml"

// Providers.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderVLLM       = "vllm"
	ProviderModelScope = "modelscope"
	ProviderMock       = "mock"
)

// Environment variables read by Load.
const (
	EnvProvider    = "REACT_LLM_PROVIDER"
	EnvModel       = "REACT_LLM_MODEL"
	EnvBaseURL     = "REACT_LLM_BASE_URL"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvAnthropic   = "ANTHROPIC_API_KEY"
	EnvTemperature = "LLM_TEMPERATURE"
	EnvMaxTokens   = "LLM_MAX_TOKENS"
	EnvMaxRounds   = "AGENT_MAX_ROUNDS"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config is the root configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Agent     AgentConfig     `yaml:"agent"`
	Log       LogConfig       `yaml:"log"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
}

// LLMConfig selects and tunes the model backend.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int64         `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AgentConfig tunes the driving agent.
type AgentConfig struct {
	MaxRounds int    `yaml:"max_rounds"`
	Strategy  string `yaml:"strategy"`
	OutputDir string `yaml:"output_dir"`
	// WorkDir enables the file tools below it.
	WorkDir string `yaml:"work_dir"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ArtifactsConfig controls the opt-in sqlite export.
type ArtifactsConfig struct {
	Persist bool   `yaml:"persist"`
	DBPath  string `yaml:"db_path"`
}

// KnowledgeConfig seeds the knowledge store used by knowledge_search and
// crew retrieval.
type KnowledgeConfig struct {
	// File is a YAML list of extra tips.
	File string `yaml:"file"`
	// SkipBuiltin leaves out the bundled resume tips.
	SkipBuiltin bool `yaml:"skip_builtin"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   4096,
			Timeout:     2 * time.Minute,
		},
		Agent: AgentConfig{
			MaxRounds: 5,
			Strategy:  "structured",
			OutputDir: "output",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Artifacts: ArtifactsConfig{
			DBPath: "artifacts.db",
		},
	}
}

// Load builds a Config with precedence environment > file > defaults. A
// missing file yields the defaults; a malformed one is an error. Present
// .env files in the working directory are loaded first and never override
// variables that are already set.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func loadDotEnv(files ...string) error {
	present := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvProvider, &c.LLM.Provider)
	str(EnvModel, &c.LLM.Model)
	str(EnvBaseURL, &c.LLM.BaseURL)
	str(EnvLogLevel, &c.Log.Level)

	switch c.LLM.Provider {
	case ProviderAnthropic:
		str(EnvAnthropic, &c.LLM.APIKey)
	default:
		str(EnvOpenAIKey, &c.LLM.APIKey)
	}

	if v, ok := lookup(EnvTemperature); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTemperature, err)
		}
		c.LLM.Temperature = f
	}
	if v, ok := lookup(EnvMaxTokens); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxTokens, err)
		}
		c.LLM.MaxTokens = n
	}
	if v, ok := lookup(EnvMaxRounds); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxRounds, err)
		}
		c.Agent.MaxRounds = n
	}

	return nil
}

// Validate checks provider, round budget, strategy and log level.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderVLLM, ProviderModelScope, ProviderMock:
	default:
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}

	if c.Agent.MaxRounds <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_rounds: must be positive, got %d", c.Agent.MaxRounds))
	}

	if _, err := parser.ParseMode(c.Agent.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("agent.strategy: %w", err))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature: %.2f out of range [0, 2]", c.LLM.Temperature))
	}

	return errors.Join(errs...)
}

// Strategy returns the configured parser mode.
func (c *Config) Strategy() parser.Mode {
	m, _ := parser.ParseMode(c.Agent.Strategy)
	return m
}

// LoggerConfig maps the log section onto a logging.LoggerConfig.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultLoggerConfig()
	if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = lvl
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	return lc
}
