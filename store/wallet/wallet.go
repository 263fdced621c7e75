package wallet

import (
	"context"
	"sync"

	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/store"
)

// New returns an in-memory wallet store. Keypairs live for the process
// lifetime only; there is deliberately no persistence behind it.
func New() core.WalletStore {
	s := &walletStore{}
	for i := range s.shards {
		s.shards[i].wallets = make(map[core.UserID]*core.Wallet)
	}

	return s
}

type walletStore struct {
	shards [store.ShardCount]shard
}

type shard struct {
	mux     sync.RWMutex
	wallets map[core.UserID]*core.Wallet
}

func (s *walletStore) shard(userID core.UserID) *shard {
	return &s.shards[uint64(userID)%store.ShardCount]
}

func (s *walletStore) Put(ctx context.Context, wallet *core.Wallet) error {
	sh := s.shard(wallet.UserID)

	w := *wallet
	sh.mux.Lock()
	sh.wallets[wallet.UserID] = &w
	sh.mux.Unlock()

	return nil
}

func (s *walletStore) Find(ctx context.Context, userID core.UserID) (*core.Wallet, error) {
	sh := s.shard(userID)

	sh.mux.RLock()
	w, ok := sh.wallets[userID]
	sh.mux.RUnlock()

	if !ok {
		return nil, core.ErrWalletNotFound
	}

	cloned := *w
	return &cloned, nil
}

func (s *walletStore) Forget(ctx context.Context, userID core.UserID) error {
	sh := s.shard(userID)

	sh.mux.Lock()
	delete(sh.wallets, userID)
	sh.mux.Unlock()

	return nil
}
