package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/tradlabs/trad-wallet-bot/core"
	walletstore "github.com/tradlabs/trad-wallet-bot/store/wallet"
)

func TestGenerateOverwrites(t *testing.T) {
	ctx := context.Background()
	store := walletstore.New()
	svc := New(store)

	first, err := svc.Generate(ctx, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := svc.Generate(ctx, 1)
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if first.PublicKey == second.PublicKey {
		t.Fatalf("two generated wallets share a public key")
	}

	got, err := store.Find(ctx, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PublicKey != second.PublicKey {
		t.Errorf("stored wallet = %s, want the latest generate %s", got.PublicKey, second.PublicKey)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := walletstore.New()
	svc := New(store)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}

	w, err := svc.Import(ctx, 2, key.String())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if w.PublicKey != key.PublicKey().String() {
		t.Errorf("imported public key = %s, want %s", w.PublicKey, key.PublicKey())
	}
	if w.SecretKey != key.String() {
		t.Errorf("imported secret does not round-trip")
	}
}

func TestImportRejectsMalformedSecret(t *testing.T) {
	ctx := context.Background()
	svc := New(walletstore.New())

	for _, secret := range []string{"", "garbage", "3mJr7AoUXx2Wqd"} {
		if _, err := svc.Import(ctx, 3, secret); !errors.Is(err, core.ErrInvalidSecretKey) {
			t.Errorf("Import(%q) err = %v, want ErrInvalidSecretKey", secret, err)
		}
	}
}
