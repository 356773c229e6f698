package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderOpenAI LLMProvider = "openai"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// LLM settings
	LLMProvider   LLMProvider `env:"LLM_PROVIDER" envDefault:"ollama"`
	ModelName     string      `env:"MODEL_NAME" envDefault:"deepseek-r1:8b"`
	OllamaBaseURL string      `env:"OLLAMA_BASE_URL" envDefault:"http://127.0.0.1:11434"`
	OpenAIAPIKey  string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string      `env:"OPENAI_BASE_URL"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Stream splitting and rendering
	ShowThinking       bool          `env:"SHOW_THINKING" envDefault:"true"`
	ThinkOpenMarker    string        `env:"THINK_OPEN_MARKER" envDefault:"<think>"`
	ThinkCloseMarker   string        `env:"THINK_CLOSE_MARKER" envDefault:"</think>"`
	MessageLengthLimit int           `env:"MESSAGE_LENGTH_LIMIT" envDefault:"4096"`
	EditInterval       time.Duration `env:"EDIT_INTERVAL" envDefault:"700ms"`

	// History
	MaxTurnPairs          int    `env:"MAX_TURN_PAIRS" envDefault:"10"`
	ConversationsFilePath string `env:"CONVERSATIONS_FILE_PATH" envDefault:"data/conversations.json"`
	MaintenanceCron       string `env:"HISTORY_MAINTENANCE_CRON" envDefault:"0 4 * * *"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
