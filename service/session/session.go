// Package session drives the per-user conversation state machine: one
// pending flow per user, advanced one message at a time, with the transfer
// pipeline invoked when a send flow completes.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/store"
	"github.com/tradlabs/trad-wallet-bot/validate"
)

// Menu actions a transport may route to HandleAction. The confirm action
// carries the amount it was rendered for, so a stale button can never move
// a different amount than the one the user reviewed.
const (
	ActionMenu      = "menu"
	ActionGenerate  = "generate_wallet"
	ActionImport    = "import_wallet"
	ActionAddress   = "view_address"
	ActionExport    = "export_secret"
	ActionForget    = "forget_wallet"
	ActionBalance   = "check_balance"
	ActionHistory   = "tx_history"
	ActionSend      = "send_value"
	ActionSendToken = "send_token"

	confirmPrefix = "confirm_send:"
)

// ConfirmAction renders the single-use confirmation action for an amount.
func ConfirmAction(amount decimal.Decimal) string {
	return confirmPrefix + amount.String()
}

// IsConfirmAction reports whether an action routes to the confirmation step.
func IsConfirmAction(action string) bool {
	return strings.HasPrefix(action, confirmPrefix)
}

type Config struct {
	// MaxAmount is the exclusive ceiling on a single transfer. Policy, not
	// protocol.
	MaxAmount decimal.Decimal
	// MinBalance is the least a wallet must hold to enter the send flow.
	MinBalance decimal.Decimal
	// Reserve is withheld from the spendable balance for network fees.
	Reserve decimal.Decimal
	// HistoryLimit caps the transaction references shown per history view.
	HistoryLimit int
}

func New(
	wallets core.WalletStore,
	walletz core.WalletService,
	flows core.FlowStore,
	transferz core.TransferService,
	gateway core.Gateway,
	logger *slog.Logger,
	cfg Config,
) *Engine {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}

	return &Engine{
		wallets:   wallets,
		walletz:   walletz,
		flows:     flows,
		transferz: transferz,
		gateway:   gateway,
		logger:    logger.With("service", "session"),
		cfg:       cfg,
	}
}

type Engine struct {
	wallets   core.WalletStore
	walletz   core.WalletService
	flows     core.FlowStore
	transferz core.TransferService
	gateway   core.Gateway
	logger    *slog.Logger
	cfg       Config

	mux   sync.Mutex
	locks map[core.UserID]*sync.Mutex
}

// lock returns the per-user mutex, held for the whole of read state ->
// validate -> mutate -> respond. Different users never contend.
func (e *Engine) lock(userID core.UserID) *sync.Mutex {
	e.mux.Lock()
	defer e.mux.Unlock()

	if e.locks == nil {
		e.locks = make(map[core.UserID]*sync.Mutex)
	}
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// HandleAction processes a menu action. Every action except confirm is
// one-shot; confirm completes a pending send flow.
func (e *Engine) HandleAction(ctx context.Context, userID core.UserID, action string) (*core.Reply, error) {
	l := e.lock(userID)
	l.Lock()
	defer l.Unlock()

	if amount, ok := strings.CutPrefix(action, confirmPrefix); ok {
		return e.confirmSend(ctx, userID, amount)
	}

	switch action {
	case ActionMenu:
		// cancel is valid at any state and never has side effects beyond
		// discarding the pending flow
		if err := e.flows.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &core.Reply{Kind: core.ReplyMenu}, nil

	case ActionGenerate:
		return e.generateWallet(ctx, userID)

	case ActionImport:
		flow := &core.Flow{UserID: userID, Kind: core.FlowImportWallet}
		if err := e.flows.Begin(ctx, flow); err != nil {
			return nil, err
		}
		return &core.Reply{Kind: core.ReplyAskSecretKey}, nil

	case ActionAddress:
		return e.withWallet(ctx, userID, func(w *core.Wallet) (*core.Reply, error) {
			return &core.Reply{
				Kind:    core.ReplyAddress,
				Address: w.PublicKey,
				Balance: e.gateway.Balance(ctx, w.PublicKey),
			}, nil
		})

	case ActionExport:
		return e.withWallet(ctx, userID, func(w *core.Wallet) (*core.Reply, error) {
			return &core.Reply{
				Kind:      core.ReplySecretExport,
				SecretKey: w.SecretKey,
				Sensitive: true,
			}, nil
		})

	case ActionForget:
		return e.withWallet(ctx, userID, func(w *core.Wallet) (*core.Reply, error) {
			if err := e.wallets.Forget(ctx, userID); err != nil {
				return nil, err
			}
			// a pending flow must not outlive the keypair it would spend from
			if err := e.flows.Clear(ctx, userID); err != nil {
				return nil, err
			}
			return &core.Reply{Kind: core.ReplyWalletForgotten}, nil
		})

	case ActionBalance:
		return e.withWallet(ctx, userID, func(w *core.Wallet) (*core.Reply, error) {
			return &core.Reply{
				Kind:    core.ReplyBalance,
				Address: w.PublicKey,
				Balance: e.gateway.Balance(ctx, w.PublicKey),
			}, nil
		})

	case ActionHistory:
		return e.withWallet(ctx, userID, func(w *core.Wallet) (*core.Reply, error) {
			items, err := e.gateway.Signatures(ctx, w.PublicKey, e.cfg.HistoryLimit)
			if err != nil {
				e.logger.Error("gateway.Signatures", "err", err)
				items = nil
			}
			return &core.Reply{Kind: core.ReplyHistory, Address: w.PublicKey, History: items}, nil
		})

	case ActionSend:
		return e.startSend(ctx, userID)

	case ActionSendToken:
		// non-native transfers are deferred
		return &core.Reply{Kind: core.ReplyComingSoon}, nil
	}

	return &core.Reply{Kind: core.ReplyMenu}, nil
}

// HandleText advances the user's pending flow with a free-text message.
// With no flow pending the message is not addressed to the engine and the
// reply is nil.
func (e *Engine) HandleText(ctx context.Context, userID core.UserID, text string) (*core.Reply, error) {
	l := e.lock(userID)
	l.Lock()
	defer l.Unlock()

	flow, err := e.flows.Find(ctx, userID)
	if err != nil {
		if store.IsErrNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	text = strings.TrimSpace(text)

	switch flow.Kind {
	case core.FlowImportWallet:
		return e.importStep(ctx, userID, text)
	case core.FlowSendValue:
		return e.sendStep(ctx, flow, text)
	}

	return nil, nil
}

func (e *Engine) withWallet(ctx context.Context, userID core.UserID, fn func(*core.Wallet) (*core.Reply, error)) (*core.Reply, error) {
	w, err := e.wallets.Find(ctx, userID)
	if err != nil {
		if store.IsErrNotFound(err) {
			return &core.Reply{Kind: core.ReplyNoWallet}, nil
		}
		return nil, err
	}
	return fn(w)
}

// flowWallet resolves the wallet a pending flow depends on. The wallet
// vanishing mid-flow is terminal: the flow is cleared, never advanced.
func (e *Engine) flowWallet(ctx context.Context, userID core.UserID, fn func(*core.Wallet) (*core.Reply, error)) (*core.Reply, error) {
	w, err := e.wallets.Find(ctx, userID)
	if err != nil {
		if store.IsErrNotFound(err) {
			if clearErr := e.flows.Clear(ctx, userID); clearErr != nil {
				return nil, clearErr
			}
			return &core.Reply{Kind: core.ReplyNoWallet}, nil
		}
		return nil, err
	}
	return fn(w)
}

func (e *Engine) generateWallet(ctx context.Context, userID core.UserID) (*core.Reply, error) {
	// generate always starts fresh; an existing wallet never blocks it
	w, err := e.walletz.Generate(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("wallet generated", "user", userID, "address", w.PublicKey)

	return &core.Reply{
		Kind:    core.ReplyWalletCreated,
		Address: w.PublicKey,
		Balance: e.gateway.Balance(ctx, w.PublicKey),
	}, nil
}

func (e *Engine) importStep(ctx context.Context, userID core.UserID, text string) (*core.Reply, error) {
	if !validate.SecretKey(text) {
		// recoverable: re-ask without consuming the flow
		return &core.Reply{Kind: core.ReplyInvalidSecretKey}, nil
	}

	w, err := e.walletz.Import(ctx, userID, text)
	if err != nil {
		return &core.Reply{Kind: core.ReplyInvalidSecretKey}, nil
	}

	if err := e.flows.Clear(ctx, userID); err != nil {
		return nil, err
	}

	e.logger.Info("wallet imported", "user", userID, "address", w.PublicKey)

	return &core.Reply{
		Kind:    core.ReplyWalletImported,
		Address: w.PublicKey,
		Balance: e.gateway.Balance(ctx, w.PublicKey),
	}, nil
}

func (e *Engine) startSend(ctx context.Context, userID core.UserID) (*core.Reply, error) {
	return e.withWallet(ctx, userID, func(w *core.Wallet) (*core.Reply, error) {
		balance := e.gateway.Balance(ctx, w.PublicKey)
		if balance.LessThan(e.cfg.MinBalance) {
			// terminal: no flow is created
			return &core.Reply{Kind: core.ReplyInsufficientBalance, Balance: balance}, nil
		}

		flow := &core.Flow{
			UserID:  userID,
			Kind:    core.FlowSendValue,
			Step:    core.StepAwaitingDestination,
			TraceID: uuid.NewString(),
		}
		if err := e.flows.Begin(ctx, flow); err != nil {
			return nil, err
		}

		return &core.Reply{Kind: core.ReplyAskDestination, Balance: balance}, nil
	})
}

func (e *Engine) sendStep(ctx context.Context, flow *core.Flow, text string) (*core.Reply, error) {
	switch flow.Step {
	case core.StepAwaitingDestination:
		if !validate.Address(text) {
			return &core.Reply{Kind: core.ReplyInvalidDestination}, nil
		}

		return e.flowWallet(ctx, flow.UserID, func(w *core.Wallet) (*core.Reply, error) {
			flow.Step = core.StepAwaitingAmount
			flow.Destination = text
			if err := e.flows.Update(ctx, flow); err != nil {
				return nil, err
			}

			return &core.Reply{
				Kind:        core.ReplyAskAmount,
				Destination: text,
				Balance:     e.gateway.Balance(ctx, w.PublicKey),
			}, nil
		})

	case core.StepAwaitingAmount:
		amount, ok := validate.Amount(text, e.cfg.MaxAmount)
		if !ok {
			return &core.Reply{Kind: core.ReplyInvalidAmount}, nil
		}

		return e.flowWallet(ctx, flow.UserID, func(w *core.Wallet) (*core.Reply, error) {
			balance := e.gateway.Balance(ctx, w.PublicKey)
			if amount.GreaterThan(balance.Sub(e.cfg.Reserve)) {
				// stay on this step; the user may retry with less
				return &core.Reply{
					Kind:    core.ReplyInsufficientBalance,
					Amount:  amount,
					Balance: balance,
				}, nil
			}

			flow.Step = core.StepAwaitingConfirmation
			flow.Amount = amount
			if err := e.flows.Update(ctx, flow); err != nil {
				return nil, err
			}

			return &core.Reply{
				Kind:        core.ReplyConfirmTransfer,
				Destination: flow.Destination,
				Amount:      amount,
			}, nil
		})
	}

	return nil, nil
}

// confirmSend completes a pending send flow. Whatever the pipeline reports,
// the flow is gone afterwards; a retry is a fresh user-initiated flow.
func (e *Engine) confirmSend(ctx context.Context, userID core.UserID, tokenAmount string) (*core.Reply, error) {
	flow, err := e.flows.Find(ctx, userID)
	if err != nil {
		if store.IsErrNotFound(err) {
			return &core.Reply{Kind: core.ReplyFlowExpired}, nil
		}
		return nil, err
	}

	amount, parseErr := decimal.NewFromString(tokenAmount)
	stale := flow.Kind != core.FlowSendValue ||
		flow.Step != core.StepAwaitingConfirmation ||
		parseErr != nil ||
		!amount.Equal(flow.Amount)

	if stale {
		// the button no longer matches the conversation; drop the flow and
		// make the user start over
		if err := e.flows.Clear(ctx, userID); err != nil {
			return nil, err
		}
		return &core.Reply{Kind: core.ReplyFlowExpired}, nil
	}

	wallet, err := e.wallets.Find(ctx, userID)
	if err != nil {
		if clearErr := e.flows.Clear(ctx, userID); clearErr != nil {
			return nil, clearErr
		}
		if store.IsErrNotFound(err) {
			return &core.Reply{Kind: core.ReplyNoWallet}, nil
		}
		return nil, err
	}

	req := &core.TransferRequest{
		TraceID:     flow.TraceID,
		UserID:      userID,
		Destination: flow.Destination,
		Amount:      flow.Amount,
	}

	outcome := e.transferz.Execute(ctx, wallet, req)

	if err := e.flows.Clear(ctx, userID); err != nil {
		return nil, err
	}

	switch outcome.Kind {
	case core.OutcomeConfirmed:
		return &core.Reply{
			Kind:        core.ReplyTransferConfirmed,
			Destination: req.Destination,
			Amount:      req.Amount,
			Signature:   outcome.Signature,
		}, nil
	case core.OutcomeRejected:
		return &core.Reply{
			Kind:        core.ReplyInsufficientBalance,
			Destination: req.Destination,
			Amount:      req.Amount,
			Balance:     e.gateway.Balance(ctx, wallet.PublicKey),
		}, nil
	default:
		// the cause stays in the logs; the user gets a generic failure
		return &core.Reply{Kind: core.ReplyTransferFailed}, nil
	}
}
