package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/avavoice/ava-server/internal/store"
)

func TestEnsureDefaultUser(t *testing.T) {
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "ava.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	ctx := context.Background()
	const userID = "00000000-0000-0000-0000-000000000001"

	if err := ensureDefaultUser(ctx, repo, userID); err != nil {
		t.Fatalf("first boot: %v", err)
	}
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if user == nil {
		t.Fatal("default user row was not created")
	}
	if !user.IsActive || user.Timezone != "UTC" {
		t.Errorf("user = %+v", user)
	}

	// A restart must not clobber edited profile fields.
	user.FullName = "Pat"
	if err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatal(err)
	}
	if err := ensureDefaultUser(ctx, repo, userID); err != nil {
		t.Fatalf("second boot: %v", err)
	}
	again, err := repo.GetUser(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if again.FullName != "Pat" {
		t.Errorf("full name after restart = %q, want Pat", again.FullName)
	}
}
