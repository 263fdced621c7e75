package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OutcomeKind uint8

const (
	_ OutcomeKind = iota
	OutcomeConfirmed
	OutcomeRejected
	OutcomeErrored
)

type RejectReason string

const (
	RejectInsufficientBalance RejectReason = "insufficient_balance"
)

// TransferRequest is built from a completed send flow and consumed within a
// single pipeline invocation. It is never stored.
type TransferRequest struct {
	TraceID     string          `json:"trace_id"`
	UserID      UserID          `json:"user_id"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
}

type TransferOutcome struct {
	Kind      OutcomeKind  `json:"kind"`
	Signature string       `json:"signature,omitempty"`
	Reason    RejectReason `json:"reason,omitempty"`
	Cause     error        `json:"-"`
}

func Confirmed(signature string) TransferOutcome {
	return TransferOutcome{Kind: OutcomeConfirmed, Signature: signature}
}

func Rejected(reason RejectReason) TransferOutcome {
	return TransferOutcome{Kind: OutcomeRejected, Reason: reason}
}

func Errored(cause error) TransferOutcome {
	return TransferOutcome{Kind: OutcomeErrored, Cause: cause}
}

// TransferService runs the validate -> submit -> classify pipeline exactly
// once per request. Implementations must not retry a dispatched submit.
type TransferService interface {
	Execute(ctx context.Context, wallet *Wallet, req *TransferRequest) TransferOutcome
}

// SignatureInfo is one historical transaction reference for the history view.
type SignatureInfo struct {
	Signature string    `json:"signature"`
	BlockTime time.Time `json:"block_time"`
	Failed    bool      `json:"failed"`
}

// Gateway is the blockchain client boundary. Balance returns zero on any
// failure and never an error; Submit returns the transaction signature or
// the failure that stopped it.
type Gateway interface {
	Balance(ctx context.Context, publicKey string) decimal.Decimal
	Submit(ctx context.Context, secretKey, destination string, amount decimal.Decimal) (string, error)
	Signatures(ctx context.Context, publicKey string, limit int) ([]*SignatureInfo, error)
}
