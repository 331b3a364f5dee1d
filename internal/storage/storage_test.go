package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stemsi/tamilprep-backend/internal/config"
)

func TestLocalStore_Save(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)

	url, err := s.Save(context.Background(), "../escape.mp3", "audio/mpeg", strings.NewReader("ID3"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "/uploads/escape.mp3" {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "escape.mp3"))
	if err != nil || string(data) != "ID3" {
		t.Fatalf("file not written: %q, %v", data, err)
	}
}

func TestNewR2Store_DisabledWithoutConfig(t *testing.T) {
	s, err := NewR2Store(context.Background(), &config.Config{R2BucketName: "only-bucket"})
	if err != nil || s != nil {
		t.Fatalf("expected nil store, got %v, %v", s, err)
	}

	var nilStore *R2Store
	if _, err := nilStore.Save(context.Background(), "a.mp3", "audio/mpeg", strings.NewReader("")); err != ErrStorageDisabled {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}
}

func TestObjectURL(t *testing.T) {
	got, err := objectURL("https://pub-abc.r2.dev/base", "audio/x.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://pub-abc.r2.dev/base/audio/x.mp3" {
		t.Fatalf("unexpected url %q", got)
	}
}
