package telegram

import (
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/midnightOne/ollama-local-telegram-bot/internal/retry"
)

const (
	transportRetries = 3
	transportPause   = 150 * time.Millisecond
	overflowNotice   = "(message too long, continued below)"
)

// slotFormat renders one chunk of raw slot content into transport text
// and a parse mode.
type slotFormat func(chunk string) (text string, parseMode string)

func plainFormat(chunk string) (string, string) { return chunk, "" }

func spoilerFormat(chunk string) (string, string) {
	return spoiler(escapeMarkdownV2(chunk)), tgbotapi.ModeMarkdownV2
}

// slot is one editable output message, plus the follow-up messages
// created when its content outgrew the transport limit.
type slot struct {
	messageID int
	lastText  string // raw content last rendered, pre-formatting
	lastEdit  time.Time
	overflow  []int
}

// streamRenderer projects the growing (reasoning, public) buffers onto
// at most two lazily created Telegram messages, respecting the
// per-slot edit interval.
type streamRenderer struct {
	s             sender
	chatID        int64
	limit         int
	interval      time.Duration
	showReasoning bool

	reasoning *slot
	public    *slot
}

func newStreamRenderer(s sender, chatID int64, limit int, interval time.Duration, showReasoning bool) *streamRenderer {
	return &streamRenderer{
		s:             s,
		chatID:        chatID,
		limit:         limit,
		interval:      interval,
		showReasoning: showReasoning,
	}
}

// shouldFlush reports whether a slot last edited at lastEdit may be
// edited again at now. Pure time comparison; callers poll it, nothing
// ever sleeps on it.
func shouldFlush(lastEdit, now time.Time, interval time.Duration) bool {
	return now.Sub(lastEdit) >= interval
}

// update is polled once per arriving fragment with the freshest
// buffers. Edits fire only when the slot's interval has elapsed.
func (r *streamRenderer) update(now time.Time, reasoning, public string) {
	if r.showReasoning && reasoning != "" {
		r.renderSlot(&r.reasoning, spoilerFormat, reasoning, now, false)
	}
	if public != "" {
		r.renderSlot(&r.public, plainFormat, public, now, false)
	}
}

// finalize runs once at end of stream, ignoring the edit interval, and
// creates any slot whose buffer is non-empty but never got a tick.
func (r *streamRenderer) finalize(reasoning, public string) {
	now := time.Now()
	if r.showReasoning && reasoning != "" {
		r.renderSlot(&r.reasoning, spoilerFormat, reasoning, now, true)
	}
	if public != "" {
		r.renderSlot(&r.public, plainFormat, public, now, true)
		return
	}
	if r.public == nil {
		_, _ = r.send(r.newMessage(plainFormat, "(no text)"))
	}
}

// renderError surfaces a terminal failure on whichever slot exists,
// falling back to a fresh message.
func (r *streamRenderer) renderError(text string) {
	if r.public != nil {
		content := r.public.lastText + "\n\n" + text
		if len(chunkText(content, r.limit)) == 1 {
			r.edit(r.public.messageID, plainFormat, content)
			r.public.lastText = content
			return
		}
	}
	_, _ = r.send(r.newMessage(plainFormat, text))
}

func (r *streamRenderer) renderSlot(sl **slot, format slotFormat, content string, now time.Time, force bool) {
	if *sl == nil {
		chunks := chunkText(content, r.limit)
		primary := chunks[0]
		if len(chunks) > 1 {
			primary = overflowNotice
		}
		id, err := r.send(r.newMessage(format, primary))
		if err != nil {
			return
		}
		*sl = &slot{messageID: id, lastText: content, lastEdit: now}
		if len(chunks) > 1 {
			r.emitOverflow(*sl, format, chunks)
		}
		return
	}

	s := *sl
	if !force && !shouldFlush(s.lastEdit, now, r.interval) {
		return
	}
	if content == s.lastText {
		return
	}
	chunks := chunkText(content, r.limit)
	if len(chunks) == 1 {
		r.edit(s.messageID, format, chunks[0])
	} else {
		// No incremental diffing of overflowed content: the primary
		// slot becomes a notice and the full chunk sequence is
		// re-emitted, replacing the previous one.
		r.edit(s.messageID, format, overflowNotice)
		r.emitOverflow(s, format, chunks)
	}
	s.lastText = content
	s.lastEdit = now
}

func (r *streamRenderer) emitOverflow(s *slot, format slotFormat, chunks []string) {
	for _, id := range s.overflow {
		if _, err := r.s.Request(tgbotapi.NewDeleteMessage(r.chatID, id)); err != nil {
			log.Printf("failed to delete overflow message %d: %v", id, err)
		}
	}
	s.overflow = s.overflow[:0]
	for _, chunk := range chunks {
		id, err := r.send(r.newMessage(format, chunk))
		if err != nil {
			continue
		}
		s.overflow = append(s.overflow, id)
	}
}

func (r *streamRenderer) newMessage(format slotFormat, chunk string) tgbotapi.MessageConfig {
	text, mode := format(chunk)
	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ParseMode = mode
	return msg
}

func (r *streamRenderer) send(msg tgbotapi.MessageConfig) (int, error) {
	var sent tgbotapi.Message
	err := retry.Do(transportRetries, transportPause, func() error {
		var err error
		sent, err = r.s.Send(msg)
		return err
	})
	if err != nil {
		log.Printf("failed to send message: %v", err)
		return 0, err
	}
	return sent.MessageID, nil
}

func (r *streamRenderer) edit(messageID int, format slotFormat, chunk string) {
	text, mode := format(chunk)
	edit := tgbotapi.NewEditMessageText(r.chatID, messageID, text)
	edit.ParseMode = mode
	err := retry.Do(transportRetries, transportPause, func() error {
		_, err := r.s.Send(edit)
		if isNotModified(err) {
			// The transport rejecting a no-op edit is not a failure.
			return nil
		}
		return err
	})
	if err != nil {
		log.Printf("failed to edit message %d: %v", messageID, err)
	}
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
