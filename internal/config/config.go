package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Generative collaborator
	OpenAIAPIKey  string
	OpenAIBaseURL string
	EditorModel   string
	JudgeModel    string
	LLMTimeout    time.Duration
	LLMMaxRetries int

	// Search collaborator
	TavilyAPIKey      string
	TavilyBaseURL     string
	SearchDepth       string
	SearchMaxResults  int
	IncludeRawContent bool

	// Raw-content enrichment
	FetchMissingRaw bool
	FetchTimeout    time.Duration
	FetchMaxBytes   int64

	// Local reference notes
	NotesDir         string
	MaxPassageTokens int

	// Aggregation and refinement
	MaxResultTokens int
	MaxIterations   int

	// Persistence
	WorkproductDir string
	OutputDir      string

	// Serve mode
	Port            string
	DocwriterAPIKey string
	WorkerCount     int
	MaxQueueSize    int
	JobTTL          time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() Config {
	cfg := Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		EditorModel:   envOr("EDITOR_MODEL", "gpt-4o-mini"),
		JudgeModel:    envOr("JUDGE_MODEL", "gpt-4o-mini"),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 120*time.Second),
		LLMMaxRetries: envInt("LLM_MAX_RETRIES", 3),

		TavilyAPIKey:      os.Getenv("TAVILY_API_KEY"),
		TavilyBaseURL:     envOr("TAVILY_BASE_URL", "https://api.tavily.com"),
		SearchDepth:       envOr("SEARCH_DEPTH", "advanced"),
		SearchMaxResults:  envInt("SEARCH_MAX_RESULTS", 5),
		IncludeRawContent: envBool("INCLUDE_RAW_CONTENT", true),

		FetchMissingRaw: envBool("FETCH_MISSING_RAW", false),
		FetchTimeout:    envDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchMaxBytes:   envInt64("FETCH_MAX_BYTES", 2097152), // 2MB

		NotesDir:         os.Getenv("NOTES_DIR"),
		MaxPassageTokens: envInt("MAX_PASSAGE_TOKENS", 1200),

		MaxResultTokens: envInt("MAX_RESULT_TOKENS", 4000),
		MaxIterations:   envInt("MAX_ITERATIONS", 3),

		WorkproductDir: envOr("WORKPRODUCT_DIR", "_workproduct"),
		OutputDir:      envOr("OUTPUT_DIR", "output"),

		Port:            envOr("PORT", "8090"),
		DocwriterAPIKey: os.Getenv("DOCWRITER_API_KEY"),
		WorkerCount:     envInt("WORKER_COUNT", 1),
		MaxQueueSize:    envInt("MAX_QUEUE_SIZE", 16),
		JobTTL:          envDuration("JOB_TTL", 1*time.Hour),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "text"),
	}

	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.LLMMaxRetries <= 0 {
		cfg.LLMMaxRetries = 3
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = 5
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.FetchMaxBytes <= 0 {
		cfg.FetchMaxBytes = 2097152
	}
	if cfg.MaxPassageTokens <= 0 {
		cfg.MaxPassageTokens = 1200
	}
	if cfg.MaxResultTokens <= 0 {
		cfg.MaxResultTokens = 4000
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 3
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the keys every refinement command needs.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

// ValidateResearch additionally requires the search collaborator.
func (c Config) ValidateResearch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("TAVILY_API_KEY is required")
	}
	return nil
}

// ValidateServe additionally requires the serve-mode auth token.
func (c Config) ValidateServe() error {
	if err := c.ValidateResearch(); err != nil {
		return err
	}
	if c.DocwriterAPIKey == "" {
		return fmt.Errorf("DOCWRITER_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
