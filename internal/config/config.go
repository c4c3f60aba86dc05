// Package config assembles the process configuration from defaults, an
// optional YAML file and TASKPILOT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/mail"
	"github.com/alexanderramin/taskpilot/internal/tracker"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TASKPILOT_"

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type ChatConfig struct {
	// MaxParallelTools caps concurrent tool invocations per turn.
	// 0 runs one goroutine per invocation.
	MaxParallelTools int    `yaml:"max_parallel_tools"`
	SystemPrompt     string `yaml:"system_prompt"`
	// SessionTTL drops sessions idle for longer; 0 keeps them until evicted.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// MaxSessions evicts the least recently used session beyond the cap.
	MaxSessions int `yaml:"max_sessions"`
}

type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Tracker tracker.Config `yaml:"tracker"`
	Mail    mail.Config    `yaml:"mail"`
	LLM     llm.LLMConfig  `yaml:"llm"`
	Chat    ChatConfig     `yaml:"chat"`
	Log     LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Tracker: tracker.DefaultConfig(),
		Mail:    mail.DefaultConfig(),
		LLM:     llm.DefaultConfig(),
		Chat:    ChatConfig{SessionTTL: 30 * time.Minute, MaxSessions: 1000},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. An empty path skips the file; a path that
// does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Tracker.BatchSize < 1 || c.Tracker.BatchSize > 200 {
		errs = append(errs, fmt.Errorf("tracker.batch_size must be in [1,200], got %d", c.Tracker.BatchSize))
	}
	if c.Chat.MaxParallelTools < 0 {
		errs = append(errs, fmt.Errorf("chat.max_parallel_tools must be >= 0, got %d", c.Chat.MaxParallelTools))
	}
	if c.Chat.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("chat.session_ttl must be >= 0, got %s", c.Chat.SessionTTL))
	}
	if c.Chat.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("chat.max_sessions must be >= 0, got %d", c.Chat.MaxSessions))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max_retries must be >= 0, got %d", c.LLM.MaxRetries))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	env := envReader{lookup: lookup}

	env.str("ADDR", &c.Server.Addr)
	env.list("ALLOWED_ORIGINS", &c.Server.AllowedOrigins)
	env.duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	env.str("TRACKER_BASE_URL", &c.Tracker.BaseURL)
	env.str("TRACKER_GRAPH_URL", &c.Tracker.GraphURL)
	env.str("TRACKER_ORGANIZATION", &c.Tracker.Organization)
	env.str("TRACKER_PROJECT", &c.Tracker.Project)
	env.str("TRACKER_TOKEN", &c.Tracker.Token)
	env.integer("TRACKER_BATCH_SIZE", &c.Tracker.BatchSize)

	env.str("MAIL_GRAPH_URL", &c.Mail.GraphURL)
	env.str("MAIL_ACCESS_TOKEN", &c.Mail.AccessToken)
	env.integer("MAIL_LOOKBACK_DAYS", &c.Mail.LookbackDays)

	env.boolean("LLM_ENABLED", &c.LLM.Enabled)
	env.boolean("LLM_LOG_CALLS", &c.LLM.LogCalls)
	env.str("LLM_ENDPOINT", &c.LLM.Endpoint)
	env.str("LLM_API_KEY", &c.LLM.APIKey)
	env.str("LLM_MODEL", &c.LLM.Model)
	env.str("LLM_ASSIGNMENT_MODEL", &c.LLM.AssignmentModel)
	env.integer("LLM_TIMEOUT_MS", &c.LLM.TimeoutMs)
	env.integer("LLM_MAX_RETRIES", &c.LLM.MaxRetries)
	env.integer("LLM_RISK_TOP_N", &c.LLM.RiskTopN)
	for _, task := range []llm.TaskType{llm.TaskAssignment, llm.TaskRiskReport, llm.TaskEmail, llm.TaskChat} {
		var ms int
		name := "LLM_" + strings.ToUpper(string(task)) + "_TIMEOUT_MS"
		if env.integer(name, &ms) && ms > 0 {
			if c.LLM.Tasks == nil {
				c.LLM.Tasks = map[llm.TaskType]llm.TaskConfig{}
			}
			tc := c.LLM.Tasks[task]
			tc.TimeoutMs = ms
			c.LLM.Tasks[task] = tc
		}
	}

	env.integer("CHAT_MAX_PARALLEL_TOOLS", &c.Chat.MaxParallelTools)
	env.duration("CHAT_SESSION_TTL", &c.Chat.SessionTTL)
	env.integer("CHAT_MAX_SESSIONS", &c.Chat.MaxSessions)

	env.str("LOG_LEVEL", &c.Log.Level)
	env.str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(env.errs...)
}

// envReader collects parse errors instead of silently ignoring bad values.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) list(name string, dst *[]string) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) integer(name string, dst *int) bool {
	v, ok := e.get(name)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return false
	}
	*dst = n
	return true
}

func (e *envReader) boolean(name string, dst *bool) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = b
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = d
}
