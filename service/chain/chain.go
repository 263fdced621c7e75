package chain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pandodao/generic"
	"github.com/shopspring/decimal"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/zyedidia/generic/cache"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	Endpoint       string `valid:"required"`
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	HistoryTTL     time.Duration
}

var lamportsPerSOL = decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL))

func New(logger *slog.Logger, cfg Config) core.Gateway {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = 30 * time.Second
	}

	history, err := lru.New[string, historyEntry](256)
	if err != nil {
		panic(err)
	}

	return &gateway{
		client:  rpc.New(cfg.Endpoint),
		logger:  logger.With("service", "chain"),
		cfg:     cfg,
		keys:    cache.New[string, solana.PublicKey](256),
		history: history,
	}
}

type gateway struct {
	client *rpc.Client
	logger *slog.Logger
	cfg    Config

	keys *cache.Cache[string, solana.PublicKey]
	mux  sync.RWMutex

	history *lru.Cache[string, historyEntry]
	sf      singleflight.Group
}

type historyEntry struct {
	at    time.Time
	items []*core.SignatureInfo
}

func (g *gateway) publicKey(s string) (solana.PublicKey, error) {
	g.mux.RLock()
	v, ok := g.keys.Get(s)
	g.mux.RUnlock()

	if ok {
		return v, nil
	}

	v, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return v, err
	}

	g.mux.Lock()
	g.keys.Put(s, v)
	g.mux.Unlock()

	return v, nil
}

// Balance returns the confirmed balance in SOL, or zero when anything goes
// wrong. Errors stay inside this boundary.
func (g *gateway) Balance(ctx context.Context, publicKey string) decimal.Decimal {
	v, err, _ := g.sf.Do(publicKey, func() (interface{}, error) {
		account, err := g.publicKey(publicKey)
		if err != nil {
			return decimal.Zero, err
		}

		out, err := g.client.GetBalance(ctx, account, rpc.CommitmentConfirmed)
		if err != nil {
			return decimal.Zero, err
		}

		return decimal.NewFromInt(int64(out.Value)).Div(lamportsPerSOL), nil
	})

	if err != nil {
		g.logger.Error("GetBalance", "err", err)
		return decimal.Zero
	}

	return v.(decimal.Decimal)
}

// Submit builds, signs and broadcasts a native transfer, then waits until
// the cluster confirms the signature. The send happens exactly once; a
// confirmation timeout is reported as a failure without a resend.
func (g *gateway) Submit(ctx context.Context, secretKey, destination string, amount decimal.Decimal) (string, error) {
	signer, err := solana.PrivateKeyFromBase58(secretKey)
	if err != nil {
		return "", fmt.Errorf("decode signer key: %w", err)
	}

	to, err := g.publicKey(destination)
	if err != nil {
		return "", fmt.Errorf("decode destination: %w", err)
	}

	lamports := amount.Mul(lamportsPerSOL).IntPart()
	if lamports <= 0 {
		return "", fmt.Errorf("amount %s below one lamport", amount)
	}

	recent, err := g.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}

	from := signer.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(uint64(lamports), from, to).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from) {
			return &signer
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := g.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	if err := g.awaitConfirmation(ctx, sig); err != nil {
		return "", err
	}

	return sig.String(), nil
}

func (g *gateway) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ConfirmTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", sig, ctx.Err())
		case <-time.After(g.cfg.PollInterval):
		}

		out, err := g.client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			g.logger.Debug("GetSignatureStatuses", "err", err)
			continue
		}

		if len(out.Value) == 0 || out.Value[0] == nil {
			continue
		}

		status := out.Value[0]
		if status.Err != nil {
			return fmt.Errorf("transaction %s failed on chain", sig)
		}

		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		}
	}
}

func (g *gateway) Signatures(ctx context.Context, publicKey string, limit int) ([]*core.SignatureInfo, error) {
	if entry, ok := g.history.Get(publicKey); ok && time.Since(entry.at) < g.cfg.HistoryTTL {
		return entry.items, nil
	}

	account, err := g.publicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}

	sigs, err := g.client.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	items := generic.MapSlice(sigs, func(s *rpc.TransactionSignature) *core.SignatureInfo {
		info := &core.SignatureInfo{
			Signature: s.Signature.String(),
			Failed:    s.Err != nil,
		}
		if s.BlockTime != nil {
			info.BlockTime = s.BlockTime.Time()
		}
		return info
	})

	g.history.Add(publicKey, historyEntry{at: time.Now(), items: items})
	return items, nil
}
