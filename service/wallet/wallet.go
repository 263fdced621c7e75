package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/validate"
)

type service struct {
	wallets core.WalletStore
}

func New(wallets core.WalletStore) core.WalletService {
	return &service{wallets: wallets}
}

func (s *service) Generate(ctx context.Context, userID core.UserID) (*core.Wallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}

	return s.put(ctx, userID, key)
}

func (s *service) Import(ctx context.Context, userID core.UserID, secretKey string) (*core.Wallet, error) {
	if !validate.SecretKey(secretKey) {
		return nil, core.ErrInvalidSecretKey
	}

	key, err := solana.PrivateKeyFromBase58(secretKey)
	if err != nil {
		return nil, core.ErrInvalidSecretKey
	}

	return s.put(ctx, userID, key)
}

// put replaces any existing wallet wholesale. Generate is never blocked by
// an existing wallet; starting fresh always wins.
func (s *service) put(ctx context.Context, userID core.UserID, key solana.PrivateKey) (*core.Wallet, error) {
	w := &core.Wallet{
		UserID:    userID,
		PublicKey: key.PublicKey().String(),
		SecretKey: key.String(),
		CreatedAt: time.Now(),
	}

	if err := s.wallets.Put(ctx, w); err != nil {
		return nil, fmt.Errorf("store wallet: %w", err)
	}

	return w, nil
}
