package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nhle/inbox-reader/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testAccount(id string) model.AccountConfig {
	return model.AccountConfig{
		ID:              id,
		Name:            "Work Mail",
		Host:            "imap.example.com",
		Port:            "993",
		Username:        "user@example.com",
		TLS:             true,
		Enabled:         true,
		FetchWindowDays: 7,
		FetchLimit:      200,
	}
}

func TestSQLiteStore_AccountRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testAccount("acct-1")
	if err := s.UpsertAccount(ctx, want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetAccountByID(ctx, "acct-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("get returned nil for existing account")
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("account mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_UpsertUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := testAccount("acct-1")
	if err := s.UpsertAccount(ctx, acct); err != nil {
		t.Fatalf("insert: %v", err)
	}

	acct.Name = "Personal"
	acct.Enabled = false
	if err := s.UpsertAccount(ctx, acct); err != nil {
		t.Fatalf("update: %v", err)
	}

	accounts, err := s.GetAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	if accounts[0].Name != "Personal" || accounts[0].Enabled {
		t.Errorf("update not applied: %+v", accounts[0])
	}
}

func TestSQLiteStore_UpsertGeneratesID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertAccount(ctx, testAccount("")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	accounts, err := s.GetAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID == "" {
		t.Errorf("expected one account with generated ID, got %+v", accounts)
	}
}

func TestSQLiteStore_GetAccountByID_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetAccountByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing account", got)
	}
}

func TestSQLiteStore_DeleteAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertAccount(ctx, testAccount("acct-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.DeleteAccount(ctx, "acct-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.GetAccountByID(ctx, "acct-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("account still present after delete: %+v", got)
	}
}

func TestSQLiteStore_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "accounts.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.UpsertAccount(context.Background(), testAccount("acct-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = s.Close()

	// Reopening runs the migration check again; data must survive.
	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	accounts, err := s.GetAccounts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("got %d accounts after reopen, want 1", len(accounts))
	}
}
