package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"discordllm/internal/core"
)

func TestFileStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	fs := NewFileStorage(path)

	saved := &core.ModelCache{
		Models:    []string{"gpt-4", "gpt-3.5-turbo"},
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := fs.SaveModelCache(saved); err != nil {
		t.Fatalf("SaveModelCache failed: %v", err)
	}

	loaded, err := fs.LoadModelCache()
	if err != nil {
		t.Fatalf("LoadModelCache failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a cache, got nil")
	}
	if len(loaded.Models) != 2 || loaded.Models[0] != "gpt-4" || loaded.Models[1] != "gpt-3.5-turbo" {
		t.Errorf("Unexpected models: %v", loaded.Models)
	}
	if loaded.UpdatedAt != saved.UpdatedAt {
		t.Errorf("Expected updatedAt %q, got %q", saved.UpdatedAt, loaded.UpdatedAt)
	}
}

func TestFileStorage_LoadMissingFile(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := fs.LoadModelCache()
	if err != nil {
		t.Fatalf("Missing file should not be an error, got: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil cache for missing file, got %v", loaded)
	}
}

func TestFileStorage_LoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStorage(path)
	if _, err := fs.LoadModelCache(); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestFileStorage_DefaultPath(t *testing.T) {
	fs := NewFileStorage("")
	if fs.filePath != core.ModelCacheFilePath {
		t.Errorf("Expected default path %q, got %q", core.ModelCacheFilePath, fs.filePath)
	}
}

func TestInitStorage_FileFallbackWithoutRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	store, err := InitStorage(filepath.Join(t.TempDir(), "models.json"), &core.NopLogger{})
	if err != nil {
		t.Fatalf("InitStorage failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*FileStorage); !ok {
		t.Errorf("Expected FileStorage, got %T", store)
	}
}

func TestInitStorage_RedisUnreachableFallsBack(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")

	store, err := InitStorage(filepath.Join(t.TempDir(), "models.json"), &core.NopLogger{})
	if err != nil {
		t.Fatalf("InitStorage failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*FileStorage); !ok {
		t.Errorf("Expected fallback to FileStorage, got %T", store)
	}
}
