package core

import (
	"context"
	"errors"
	"time"
)

// UserID is the opaque identifier the chat transport attaches to every
// inbound event. It keys all per-user state.
type UserID int64

var ErrWalletNotFound = errors.New("wallet not found")

type Wallet struct {
	UserID    UserID    `json:"user_id"`
	PublicKey string    `json:"public_key"`
	SecretKey string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// WalletStore owns at most one keypair per user. Put replaces any existing
// entry wholesale; generate and import both go through it.
type WalletStore interface {
	Put(ctx context.Context, wallet *Wallet) error
	Find(ctx context.Context, userID UserID) (*Wallet, error)
	Forget(ctx context.Context, userID UserID) error
}

type WalletService interface {
	Generate(ctx context.Context, userID UserID) (*Wallet, error)
	Import(ctx context.Context, userID UserID, secretKey string) (*Wallet, error)
}
