package core

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type FlowKind uint8

const (
	_ FlowKind = iota
	FlowImportWallet
	FlowSendValue
)

type SendStep uint8

const (
	_ SendStep = iota
	StepAwaitingDestination
	StepAwaitingAmount
	StepAwaitingConfirmation
)

var ErrFlowNotFound = errors.New("flow not found")

// Flow is the single pending multi-turn interaction a user may have.
// Destination is set only once the destination step validated, Amount only
// once the amount step validated; the session engine is the sole writer.
type Flow struct {
	UserID      UserID          `json:"user_id"`
	Kind        FlowKind        `json:"kind"`
	Step        SendStep        `json:"step,omitempty"`
	Destination string          `json:"destination,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
	TraceID     string          `json:"trace_id,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FlowStore holds at most one Flow per user. Begin silently replaces any
// prior incomplete flow; Clear removes on any terminal outcome.
type FlowStore interface {
	Begin(ctx context.Context, flow *Flow) error
	Find(ctx context.Context, userID UserID) (*Flow, error)
	Update(ctx context.Context, flow *Flow) error
	Clear(ctx context.Context, userID UserID) error
	ListIdle(ctx context.Context, cutoff time.Time) ([]UserID, error)
}
