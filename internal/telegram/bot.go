package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/midnightOne/ollama-local-telegram-bot/internal/history"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/llm"
)

// Settings carries the per-exchange configuration the bot consumes.
type Settings struct {
	Model        string
	ShowThinking bool
	OpenMarker   string
	CloseMarker  string
	MessageLimit int
	EditInterval time.Duration
}

type Bot struct {
	api          *tgbotapi.BotAPI
	s            sender
	llmClient    llm.Client
	history      *history.Manager
	systemPrompt string

	openMarker  string
	closeMarker string
	limit       int
	interval    time.Duration

	mu           sync.Mutex
	model        string
	showThinking bool
}

func New(botToken string, llmClient llm.Client, hist *history.Manager, systemPrompt string, st Settings) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:          api,
		s:            botAPISender{api: api},
		llmClient:    llmClient,
		history:      hist,
		systemPrompt: systemPrompt,
		openMarker:   st.OpenMarker,
		closeMarker:  st.CloseMarker,
		limit:        st.MessageLimit,
		interval:     st.EditInterval,
		model:        st.Model,
		showThinking: st.ShowThinking,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		msg := update.Message
		if msg.IsCommand() {
			b.handleCommand(msg)
			continue
		}
		// One exchange per incoming message; chats are independent.
		go b.handleIncomingMessage(ctx, msg)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		if err := b.history.Reset(msg.Chat.ID); err != nil {
			log.Printf("failed to reset conversation %d: %v", msg.Chat.ID, err)
		}
		b.sendMessage(msg.Chat.ID, "Conversation reset. Let's start fresh!")
	case "set_model":
		name := strings.TrimSpace(msg.CommandArguments())
		if name == "" {
			b.sendMessage(msg.Chat.ID, "Usage: /set_model <model_name>")
			return
		}
		b.mu.Lock()
		b.model = name
		b.mu.Unlock()
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Model set to: %s", name))
	case "toggle_thinking":
		b.mu.Lock()
		b.showThinking = !b.showThinking
		on := b.showThinking
		b.mu.Unlock()
		status := "OFF"
		if on {
			status = "ON"
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Thinking display is now %s.", status))
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	log.Printf("Incoming message from chat %d (@%s): %q", msg.Chat.ID, msg.From.UserName, msg.Text)
	b.runExchange(ctx, msg.Chat.ID, msg.Text)
}

func (b *Bot) currentModel() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model
}

func (b *Bot) thinkingEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showThinking
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
