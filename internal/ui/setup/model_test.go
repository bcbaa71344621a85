package setup

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nhle/inbox-reader/internal/keys"
	"github.com/nhle/inbox-reader/internal/model"
)

// recordingStore counts registry writes.
type recordingStore struct {
	upserts []model.AccountConfig
}

func (r *recordingStore) UpsertAccount(_ context.Context, acct model.AccountConfig) error {
	r.upserts = append(r.upserts, acct)
	return nil
}

func (r *recordingStore) GetAccounts(_ context.Context) ([]model.AccountConfig, error) {
	return nil, nil
}

func (r *recordingStore) GetAccountByID(_ context.Context, _ string) (*model.AccountConfig, error) {
	return nil, nil
}

func (r *recordingStore) DeleteAccount(_ context.Context, _ string) error {
	return nil
}

// A failed connection test must leave the registry and the keyring
// untouched: the credential and the account row are only written after
// the connection succeeds.
func TestValidateAndSave_FailedConnectWritesNothing(t *testing.T) {
	rs := &recordingStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(rs, keys.DefaultKeyMap(), log, 80, 24)
	m.formPassword = "hunter2"

	acct := model.AccountConfig{
		ID:       "acct-test",
		Name:     "Broken",
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "nobody",
		TLS:      true,
	}

	msg := m.validateAndSave(acct)()
	result, ok := msg.(validateResultMsg)
	if !ok {
		t.Fatalf("got %T, want validateResultMsg", msg)
	}
	if result.err == nil {
		t.Fatal("expected a connection error for an unreachable server")
	}
	if len(rs.upserts) != 0 {
		t.Errorf("failed validation stored %d account(s), want none", len(rs.upserts))
	}
}
