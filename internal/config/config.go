package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every knob the pipeline needs. Components receive it
// (or the fields they need) through their constructors; nothing reads
// ambient process state after Load returns.
type Config struct {
	// 知识星球
	GroupIDs   []string `json:"group_ids"`
	APIBaseURL string   `json:"api_base_url"`
	CookiePath string   `json:"cookie_path"`

	// 爬虫
	RequestsPerMinute int           `json:"requests_per_minute"`
	RequestTimeout    time.Duration `json:"request_timeout"`

	// AI 分析
	DeepSeekAPIKey string        `json:"deepseek_api_key"`
	DeepSeekModel  string        `json:"deepseek_model"`
	OpenAIAPIKey   string        `json:"openai_api_key"`
	OpenAIBaseURL  string        `json:"openai_base_url"`
	OpenAIModel    string        `json:"openai_model"`
	AnalysisMode   string        `json:"analysis_mode"` // topic | security
	BatchSize      int           `json:"batch_size"`
	ModelCallDelay time.Duration `json:"model_call_delay"`

	// 路径
	DataDir      string `json:"data_dir"`
	OutputDir    string `json:"output_dir"`
	CheckpointDB string `json:"checkpoint_db"`

	// 企业微信
	WecomWebhook string `json:"wecom_webhook"`

	// 定时任务
	CronSpec string `json:"cron_spec"`

	LogLevel string `json:"log_level"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		APIBaseURL: "https://api.zsxq.com/v2",
		CookiePath: filepath.Join(currentDir, "data", "cookie.json"),

		RequestsPerMinute: 20,
		RequestTimeout:    10 * time.Second,

		DeepSeekModel:  "deepseek-chat",
		OpenAIBaseURL:  "https://api.openai.com/v1",
		OpenAIModel:    "gpt-4o-mini",
		AnalysisMode:   "topic",
		BatchSize:      5,
		ModelCallDelay: 5 * time.Second,

		DataDir:      filepath.Join(currentDir, "data"),
		OutputDir:    filepath.Join(currentDir, "output"),
		CheckpointDB: filepath.Join(currentDir, "data", "checkpoints.db"),

		CronSpec: "0 21 * * *",
		LogLevel: "info",
	}
}

// Load reads .env (if present) and applies environment overrides on top
// of the defaults.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env 不存在时静默跳过

	cfg := DefaultConfig()

	if v := os.Getenv("ZSXQ_GROUP_IDS"); v != "" {
		cfg.GroupIDs = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.GroupIDs = append(cfg.GroupIDs, id)
			}
		}
	}
	setString(&cfg.APIBaseURL, "ZSXQ_API_BASE_URL")
	setString(&cfg.CookiePath, "ZSXQ_COOKIE_PATH")

	setInt(&cfg.RequestsPerMinute, "REQUESTS_PER_MINUTE")
	setSeconds(&cfg.RequestTimeout, "REQUEST_TIMEOUT_SECONDS")

	setString(&cfg.DeepSeekAPIKey, "DEEPSEEK_API_KEY")
	setString(&cfg.DeepSeekModel, "DEEPSEEK_MODEL")
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.AnalysisMode, "ANALYSIS_MODE")
	setInt(&cfg.BatchSize, "BATCH_SIZE")
	setSeconds(&cfg.ModelCallDelay, "MODEL_CALL_DELAY_SECONDS")

	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.OutputDir, "OUTPUT_DIR")
	setString(&cfg.CheckpointDB, "CHECKPOINT_DB")

	setString(&cfg.WecomWebhook, "WECOM_WEBHOOK")
	setString(&cfg.CronSpec, "CRON_SPEC")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	return cfg, nil
}

// EnsureDirectories creates the on-disk layout the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.OutputDir, filepath.Dir(c.CheckpointDB)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// HasProvider reports whether at least one model provider key is set.
func (c *Config) HasProvider() bool {
	return c.DeepSeekAPIKey != "" || c.OpenAIAPIKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Second
		}
	}
}
