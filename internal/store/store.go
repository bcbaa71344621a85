// Package store persists application configuration: the registry of
// mailbox accounts. Mail data itself is never stored; conversations are
// rebuilt from scratch on every refresh.
package store

import (
	"context"

	"github.com/nhle/inbox-reader/internal/model"
)

// Store defines the persistence interface for the account registry.
type Store interface {
	UpsertAccount(ctx context.Context, acct model.AccountConfig) error
	GetAccounts(ctx context.Context) ([]model.AccountConfig, error)
	GetAccountByID(ctx context.Context, id string) (*model.AccountConfig, error)
	DeleteAccount(ctx context.Context, id string) error
}
