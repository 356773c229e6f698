package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/midnightOne/ollama-local-telegram-bot/internal/history"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/llm"
	"github.com/midnightOne/ollama-local-telegram-bot/internal/splitter"
)

// runExchange owns one round trip: it streams the completion, folds
// fragments through the splitter, polls the renderer, and commits both
// turns once the stream finished cleanly. A failed stream renders an
// error and leaves the turn store untouched.
func (b *Bot) runExchange(ctx context.Context, chatID int64, userText string) {
	userTurn := history.Turn{Role: history.RoleUser, Content: userText}
	turns := append(b.history.Get(chatID), userTurn)

	req := llm.Request{
		Model:    b.currentModel(),
		Messages: buildMessages(b.systemPrompt, turns, b.openMarker, b.closeMarker),
	}

	sm := splitter.New(b.openMarker, b.closeMarker)
	r := newStreamRenderer(b.s, chatID, b.limit, b.interval, b.thinkingEnabled())

	ch := make(chan llm.StreamChunk)
	errCh := make(chan error, 1)
	go func() { errCh <- b.llmClient.Stream(ctx, req, ch) }()

	for chunk := range ch {
		sm.Feed(chunk.Content)
		r.update(time.Now(), sm.Reasoning(), sm.Public())
	}
	if err := <-errCh; err != nil {
		log.Printf("stream failed for chat %d: %v", chatID, err)
		r.renderError(fmt.Sprintf("Error talking to the model backend:\n%v", err))
		return
	}

	sm.Close()
	r.finalize(sm.Reasoning(), sm.Public())

	assistant := history.Turn{
		Role:      history.RoleAssistant,
		Content:   strings.TrimSpace(sm.Public()),
		Reasoning: strings.TrimSpace(sm.Reasoning()),
	}
	if err := b.history.Commit(chatID, userTurn, assistant); err != nil {
		log.Printf("failed to persist conversation %d: %v", chatID, err)
	}
}

// buildMessages renders stored turns into backend messages. Assistant
// turns with stored reasoning get the markers reinserted so the
// model-visible history matches what the model itself emitted.
func buildMessages(systemPrompt string, turns []history.Turn, openMarker, closeMarker string) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns)+1)
	if systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: systemPrompt})
	}
	for _, t := range turns {
		content := t.Content
		if t.Role == history.RoleAssistant && t.Reasoning != "" {
			content = openMarker + t.Reasoning + closeMarker + content
		}
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: content})
	}
	return msgs
}
