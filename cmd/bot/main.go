package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/midnightOne/ollama-local-telegram-bot/internal/config"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/history"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/llm"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/scheduler"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/telegram"
)

const defaultSystemPrompt = "You are a helpful assistant."

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	var repo history.Repository
	if cfg.ConversationsFilePath != "" {
		fr, err := history.NewFileRepository(cfg.ConversationsFilePath)
		if err != nil {
			log.Printf("failed to init conversations repo: %v", err)
		} else {
			repo = fr
		}
	}

	hist, err := history.NewManager(repo, cfg.MaxTurnPairs)
	if err != nil {
		log.Fatalf("failed to load conversations: %v", err)
	}

	factory := &llm.Factory{
		OllamaBaseURL:      cfg.OllamaBaseURL,
		OpenAIAPIKey:       cfg.OpenAIAPIKey,
		OpenAIBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
	}
	llmClient, err := factory.CreateClient(string(cfg.LLMProvider))
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		llmClient,
		hist,
		readSystemPrompt(cfg.SystemPromptPath),
		telegram.Settings{
			Model:        cfg.ModelName,
			ShowThinking: cfg.ShowThinking,
			OpenMarker:   cfg.ThinkOpenMarker,
			CloseMarker:  cfg.ThinkCloseMarker,
			MessageLimit: cfg.MessageLengthLimit,
			EditInterval: cfg.EditInterval,
		},
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(cfg.MaintenanceCron)
	sched.SetMaintenanceFunc(hist.Maintain)
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot.Start(context.Background())
}

func readSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s, using default: %v", path, err)
		return defaultSystemPrompt
	}
	return string(data)
}
