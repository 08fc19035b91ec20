package main

import (
	"path/filepath"
	"testing"

	"github.com/hailam/chesscore/internal/storage"
)

func TestRunClosesStorageOnListenError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	*dbDir = dir
	*addr = "127.0.0.1:-1"

	if err := run(); err == nil {
		t.Fatal("run succeeded with an invalid listen address")
	}

	// Badger locks its directory until closed.
	store, err := storage.NewStorage(dir)
	if err != nil {
		t.Fatalf("reopen after run: %v", err)
	}
	store.Close()
}
