package history

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	in := map[string][]Turn{
		"100": {
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello", Reasoning: "wave"},
		},
	}
	if err := repo.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || len(out["100"]) != 2 {
		t.Fatalf("unexpected load result: %+v", out)
	}
	if out["100"][1].Reasoning != "wave" {
		t.Fatalf("reasoning lost on round trip: %+v", out["100"][1])
	}
}

func TestFileRepositoryEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	out, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty store, got %+v", out)
	}
}

func TestFileRepositoryDropsMalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	content := `{
		"1": [{"role": "user", "content": "ok"}],
		"2": "not a turn list",
		"3": [{"role": "alien", "content": "??"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	out, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected only the readable entry, got %+v", out)
	}
	if out["1"][0].Content != "ok" {
		t.Fatalf("readable entry lost: %+v", out)
	}
}

func TestFileRepositoryGarbageFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte("{{{{ definitely not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	out, err := repo.Load()
	if err != nil {
		t.Fatalf("load should recover, got: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected fresh store, got %+v", out)
	}
}
