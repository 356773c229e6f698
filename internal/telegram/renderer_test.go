package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	sent         []tgbotapi.MessageConfig
	edits        []tgbotapi.EditMessageTextConfig
	deleted      []int
	nextID       int
	editErr      error
	editAttempts int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		f.nextID++
		f.sent = append(f.sent, v)
		return tgbotapi.Message{MessageID: f.nextID}, nil
	case tgbotapi.EditMessageTextConfig:
		f.editAttempts++
		if f.editErr != nil {
			return tgbotapi.Message{}, f.editErr
		}
		f.edits = append(f.edits, v)
		return tgbotapi.Message{}, nil
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if v, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		f.deleted = append(f.deleted, v.MessageID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

const testInterval = 700 * time.Millisecond

func newTestRenderer(fs *fakeSender, limit int, showReasoning bool) *streamRenderer {
	return newStreamRenderer(fs, 1, limit, testInterval, showReasoning)
}

func TestLazyCreation(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)
	now := time.Now()

	r.update(now, "", "")
	if len(fs.sent) != 0 {
		t.Fatalf("slots created for empty buffers: %+v", fs.sent)
	}

	r.update(now, "", "public text")
	if len(fs.sent) != 1 {
		t.Fatalf("expected one public slot, got %d sends", len(fs.sent))
	}
	if r.reasoning != nil {
		t.Fatalf("reasoning slot created without reasoning content")
	}
	if fs.sent[0].Text != "public text" {
		t.Fatalf("unexpected public content: %q", fs.sent[0].Text)
	}
}

func TestReasoningSlotFormatting(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)

	r.update(time.Now(), "step 1. think!", "")
	if len(fs.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(fs.sent))
	}
	msg := fs.sent[0]
	if msg.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Fatalf("reasoning slot parse mode = %q", msg.ParseMode)
	}
	if !strings.HasPrefix(msg.Text, "||") || !strings.HasSuffix(msg.Text, "||") {
		t.Fatalf("reasoning not wrapped in spoiler: %q", msg.Text)
	}
	if !strings.Contains(msg.Text, `step 1\. think\!`) {
		t.Fatalf("reasoning not escaped: %q", msg.Text)
	}
}

func TestReasoningHiddenWhenThinkingOff(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, false)

	r.update(time.Now(), "secret plan", "answer")
	r.finalize("secret plan", "answer")
	for _, m := range fs.sent {
		if strings.Contains(m.Text, "secret plan") {
			t.Fatalf("reasoning leaked while thinking display is off: %q", m.Text)
		}
	}
	if r.reasoning != nil {
		t.Fatalf("reasoning slot created while thinking display is off")
	}
}

func TestRateLimitHoldsEditsBack(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)
	t0 := time.Now()

	r.update(t0, "", "one")
	r.update(t0.Add(100*time.Millisecond), "", "one two")
	if len(fs.edits) != 0 {
		t.Fatalf("edit fired inside the interval")
	}

	r.update(t0.Add(testInterval), "", "one two three")
	if len(fs.edits) != 1 {
		t.Fatalf("expected exactly one edit, got %d", len(fs.edits))
	}
	if fs.edits[0].Text != "one two three" {
		t.Fatalf("edit did not carry the freshest content: %q", fs.edits[0].Text)
	}
}

func TestIdenticalContentIsNoOp(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)
	t0 := time.Now()

	r.update(t0, "", "stable")
	r.update(t0.Add(2*testInterval), "", "stable")
	r.finalize("", "stable")
	if len(fs.sent) != 1 || len(fs.edits) != 0 {
		t.Fatalf("identical buffers caused extra transport calls: sends=%d edits=%d", len(fs.sent), len(fs.edits))
	}
}

func TestOverflowRendering(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)

	r.update(time.Now(), strings.Repeat("r", 9000), "")
	// Primary placeholder plus three chunk messages.
	if len(fs.sent) != 4 {
		t.Fatalf("expected 4 sends, got %d", len(fs.sent))
	}
	if fs.sent[0].Text != overflowNotice {
		t.Fatalf("primary slot is not the overflow notice: %q", fs.sent[0].Text)
	}
	if len(r.reasoning.overflow) != 3 {
		t.Fatalf("expected 3 overflow messages, got %d", len(r.reasoning.overflow))
	}
}

func TestOverflowReEmitDeletesPreviousChunks(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 5, true)
	t0 := time.Now()

	r.update(t0, "", "aaaaabbbbbcc")
	firstOverflow := append([]int(nil), r.public.overflow...)
	if len(firstOverflow) != 3 {
		t.Fatalf("expected 3 overflow messages, got %d", len(firstOverflow))
	}

	r.update(t0.Add(testInterval), "", "aaaaabbbbbccccc")
	if len(fs.deleted) != 3 {
		t.Fatalf("previous overflow chunks not deleted: %v", fs.deleted)
	}
	for i, id := range firstOverflow {
		if fs.deleted[i] != id {
			t.Fatalf("deleted %v, expected %v", fs.deleted, firstOverflow)
		}
	}
}

func TestFinalizeCreatesMissingSlots(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)

	// Stream ended before any update tick fired.
	r.finalize("late reasoning", "late answer")
	if len(fs.sent) != 2 {
		t.Fatalf("expected both slots created, got %d sends", len(fs.sent))
	}
	if r.reasoning == nil || r.public == nil {
		t.Fatalf("slots missing after finalize")
	}
}

func TestFinalizeIgnoresInterval(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)
	t0 := time.Now()

	r.update(t0, "", "partial")
	r.finalize("", "partial answer, now complete")
	if len(fs.edits) != 1 {
		t.Fatalf("final flush did not fire: %d edits", len(fs.edits))
	}
	if fs.edits[0].Text != "partial answer, now complete" {
		t.Fatalf("final flush content: %q", fs.edits[0].Text)
	}
}

func TestFinalizeEmptyStreamLeavesNotice(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)

	r.finalize("", "")
	if len(fs.sent) != 1 || fs.sent[0].Text != "(no text)" {
		t.Fatalf("expected single placeholder message, got %+v", fs.sent)
	}
}

func TestNotModifiedRejectionIsSwallowed(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)
	t0 := time.Now()

	r.update(t0, "", "v1")
	fs.editErr = errors.New("Bad Request: message is not modified")
	r.update(t0.Add(testInterval), "", "v2")
	// Treated as a successful no-op: one attempt, no retries.
	if fs.editAttempts != 1 {
		t.Fatalf("expected 1 edit attempt, got %d", fs.editAttempts)
	}
}

func TestFailedEditRetriesBoundedTimes(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)
	t0 := time.Now()

	r.update(t0, "", "v1")
	fs.editErr = errors.New("Bad Request: message to edit not found")
	r.update(t0.Add(testInterval), "", "v2")
	if fs.editAttempts != transportRetries {
		t.Fatalf("expected %d edit attempts, got %d", transportRetries, fs.editAttempts)
	}
}

func TestRenderErrorAppendsToPublicSlot(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)

	r.update(time.Now(), "", "half an answer")
	r.renderError("Error talking to the model backend:\nconnection refused")
	if len(fs.edits) != 1 {
		t.Fatalf("expected the public slot to be edited, got %d edits", len(fs.edits))
	}
	if !strings.Contains(fs.edits[0].Text, "half an answer") || !strings.Contains(fs.edits[0].Text, "connection refused") {
		t.Fatalf("error not appended: %q", fs.edits[0].Text)
	}
}

func TestRenderErrorWithoutSlotsSendsMessage(t *testing.T) {
	fs := &fakeSender{}
	r := newTestRenderer(fs, 4096, true)

	r.renderError("backend down")
	if len(fs.sent) != 1 || fs.sent[0].Text != "backend down" {
		t.Fatalf("expected a fresh error message, got %+v", fs.sent)
	}
}

func TestShouldFlush(t *testing.T) {
	t0 := time.Now()
	if shouldFlush(t0, t0.Add(100*time.Millisecond), testInterval) {
		t.Fatalf("flush inside the interval")
	}
	if !shouldFlush(t0, t0.Add(testInterval), testInterval) {
		t.Fatalf("flush did not fire at the interval boundary")
	}
}
