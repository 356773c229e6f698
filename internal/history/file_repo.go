package history

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Repository persists all conversations wholesale.
type Repository interface {
	Load() (map[string][]Turn, error)
	Save(conversations map[string][]Turn) error
}

type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileRepository{path: path}, nil
}

// Load reads the whole store. A conversation entry that fails to
// decode is dropped on its own; an unreadable file starts fresh.
func (r *FileRepository) Load() (map[string][]Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		if err != io.EOF {
			log.Printf("could not load existing conversations at %s, starting fresh: %v", r.path, err)
		}
		return map[string][]Turn{}, nil
	}

	out := make(map[string][]Turn, len(raw))
	for key, entry := range raw {
		var turns []Turn
		if err := json.Unmarshal(entry, &turns); err != nil {
			log.Printf("dropping unreadable conversation %q: %v", key, err)
			continue
		}
		if !validTurns(turns) {
			log.Printf("dropping conversation %q with unknown roles", key)
			continue
		}
		out[key] = turns
	}
	return out, nil
}

func (r *FileRepository) Save(conversations map[string][]Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(conversations); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func validTurns(turns []Turn) bool {
	for _, t := range turns {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			return false
		}
	}
	return true
}
