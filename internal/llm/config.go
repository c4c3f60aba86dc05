package llm

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskAssignment TaskType = "assignment"
	TaskRiskReport TaskType = "risk_report"
	TaskEmail      TaskType = "email"
	TaskChat       TaskType = "chat"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutMs   int     `yaml:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	LogCalls bool   `yaml:"log_calls"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// AssignmentModel is the (usually fine-tuned) model used for
	// assignment recommendations. Empty falls back to Model.
	AssignmentModel string                  `yaml:"assignment_model"`
	TimeoutMs       int                     `yaml:"timeout_ms"`
	MaxRetries      int                     `yaml:"max_retries"`
	RiskTopN        int                     `yaml:"risk_top_n"`
	Tasks           map[TaskType]TaskConfig `yaml:"tasks"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default and requests are never retried.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "https://api.openai.com/v1/",
		Model:      "gpt-4o-mini",
		TimeoutMs:  30000,
		MaxRetries: 0,
		RiskTopN:   15,
		Tasks: map[TaskType]TaskConfig{
			TaskAssignment: {Temperature: 0.2, MaxTokens: 1024, TimeoutMs: 30000},
			TaskRiskReport: {Temperature: 0.2, MaxTokens: 2048, TimeoutMs: 45000},
			TaskEmail:      {Temperature: 0.7, MaxTokens: 1024, TimeoutMs: 20000},
			TaskChat:       {Temperature: 0.3, MaxTokens: 2048, TimeoutMs: 60000},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// ModelFor returns the model name used for task.
func (c LLMConfig) ModelFor(task TaskType) string {
	if task == TaskAssignment && c.AssignmentModel != "" {
		return c.AssignmentModel
	}
	return c.Model
}
