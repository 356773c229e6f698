package llm

import (
	"context"
	"errors"
)

// ErrBackendUnavailable marks connection failures and non-success
// statuses from the inference backend.
var ErrBackendUnavailable = errors.New("inference backend unavailable")

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Model    string
	Messages []Message
}

// StreamChunk is one fragment of the model's answer. Done is set on
// the terminating chunk.
type StreamChunk struct {
	Content string
	Done    bool
}

// Client streams a completion into ch. The implementation closes ch
// when the stream ends, whether normally or with an error; the error
// is the return value.
type Client interface {
	Stream(ctx context.Context, req Request, ch chan<- StreamChunk) error
}
