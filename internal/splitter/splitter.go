// Package splitter separates a streamed model answer into the hidden
// reasoning segment and the public answer surrounding it. Fragments
// arrive at arbitrary boundaries; a marker may be split across two
// fragments, so the scanner withholds a fragment suffix that could be
// the start of the marker it is currently looking for and retries it
// when the next fragment arrives.
package splitter

import "strings"

type state int

const (
	outsideReasoning state = iota
	insideReasoning
	afterReasoning
)

type Splitter struct {
	open  string
	close string

	st    state
	carry string

	before    strings.Builder
	reasoning strings.Builder
	after     strings.Builder
}

func New(openMarker, closeMarker string) *Splitter {
	return &Splitter{open: openMarker, close: closeMarker}
}

// Feed consumes the next fragment and routes its characters into the
// before/reasoning/after buffers.
func (s *Splitter) Feed(fragment string) {
	text := s.carry + fragment
	s.carry = ""
	for text != "" {
		marker := s.open
		if s.st == insideReasoning {
			marker = s.close
		}
		if idx := strings.Index(text, marker); idx >= 0 {
			s.buf().WriteString(text[:idx])
			text = text[idx+len(marker):]
			switch s.st {
			case outsideReasoning, afterReasoning:
				s.st = insideReasoning
			case insideReasoning:
				s.st = afterReasoning
			}
			continue
		}
		keep := len(text) - markerOverlap(text, marker)
		s.buf().WriteString(text[:keep])
		s.carry = text[keep:]
		return
	}
}

// Close flushes the carry-over into the active buffer. An unterminated
// reasoning block is not an error; its partial content stays in the
// reasoning buffer.
func (s *Splitter) Close() {
	if s.carry != "" {
		s.buf().WriteString(s.carry)
		s.carry = ""
	}
}

func (s *Splitter) Before() string    { return s.before.String() }
func (s *Splitter) Reasoning() string { return s.reasoning.String() }
func (s *Splitter) After() string     { return s.after.String() }

// Public returns everything outside reasoning spans, in stream order.
func (s *Splitter) Public() string {
	return s.before.String() + s.after.String()
}

func (s *Splitter) buf() *strings.Builder {
	switch s.st {
	case insideReasoning:
		return &s.reasoning
	case afterReasoning:
		return &s.after
	default:
		return &s.before
	}
}

// markerOverlap reports the length of the longest suffix of text that
// is a proper prefix of marker, i.e. the number of trailing bytes that
// could still turn into the marker once more text arrives.
func markerOverlap(text, marker string) int {
	max := len(marker) - 1
	if max > len(text) {
		max = len(text)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(marker, text[len(text)-n:]) {
			return n
		}
	}
	return 0
}
