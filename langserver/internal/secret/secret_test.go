package secret_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kitagry/copilotls/langserver/internal/secret"
)

func newStores(t *testing.T) map[string]secret.Store {
	t.Helper()

	db, err := secret.OpenSQLite(filepath.Join(t.TempDir(), "secrets.sqlite3"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]secret.Store{
		"memory": secret.NewMemory(),
		"sqlite": db,
	}
}

func TestStore(t *testing.T) {
	for n, store := range newStores(t) {
		t.Run(n, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := store.Get(ctx, secret.KeyUserToken); err != nil || ok {
				t.Fatalf("expected no token, got ok=%v err=%v", ok, err)
			}

			if err := store.Store(ctx, secret.KeyUserToken, "first"); err != nil {
				t.Fatal(err)
			}
			if err := store.Store(ctx, secret.KeyUserToken, "second"); err != nil {
				t.Fatal(err)
			}

			got, ok, err := store.Get(ctx, secret.KeyUserToken)
			if err != nil {
				t.Fatal(err)
			}
			if !ok || got != "second" {
				t.Errorf("expected second, got %q (ok=%v)", got, ok)
			}

			if err := store.Delete(ctx, secret.KeyUserToken); err != nil {
				t.Fatal(err)
			}
			if err := store.Delete(ctx, secret.KeyUserToken); err != nil {
				t.Fatalf("deleting an absent key should succeed: %v", err)
			}
			if _, ok, _ := store.Get(ctx, secret.KeyUserToken); ok {
				t.Error("token should be deleted")
			}
		})
	}
}

func TestOpenSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secrets.sqlite3")
	ctx := context.Background()

	db, err := secret.OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Store(ctx, secret.KeyUserToken, "token"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	db, err = secret.OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	got, ok, err := db.Get(ctx, secret.KeyUserToken)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != "token" {
		t.Errorf("expected token, got %q (ok=%v)", got, ok)
	}
}

func TestOpenSQLite_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	db, err := secret.OpenSQLite("")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, "copilotls", "secrets.sqlite3")); err != nil {
		t.Errorf("expected database under XDG_DATA_HOME: %v", err)
	}
}
