package flow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/tradlabs/trad-wallet-bot/store"
)

func TestBeginReplacesPriorFlow(t *testing.T) {
	ctx := context.Background()
	s := New()

	send := &core.Flow{
		UserID: 1,
		Kind:   core.FlowSendValue,
		Step:   core.StepAwaitingAmount,
		Amount: decimal.RequireFromString("0.5"),
	}
	if err := s.Begin(ctx, send); err != nil {
		t.Fatalf("begin: %v", err)
	}

	// starting a new flow discards the old one, no merge
	if err := s.Begin(ctx, &core.Flow{UserID: 1, Kind: core.FlowImportWallet}); err != nil {
		t.Fatalf("begin import: %v", err)
	}

	got, err := s.Find(ctx, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Kind != core.FlowImportWallet {
		t.Errorf("Kind = %v, want import", got.Kind)
	}
	if got.Step != 0 || !got.Amount.IsZero() {
		t.Errorf("replacement kept stale fields: %+v", got)
	}
}

func TestAtMostOneFlowPerUser(t *testing.T) {
	ctx := context.Background()
	s := New().(*flowStore)

	for i := 0; i < 5; i++ {
		_ = s.Begin(ctx, &core.Flow{UserID: 3, Kind: core.FlowSendValue, Step: core.StepAwaitingDestination})
	}

	count := 0
	for i := range s.shards {
		s.shards[i].mux.RLock()
		count += len(s.shards[i].flows)
		s.shards[i].mux.RUnlock()
	}
	if count != 1 {
		t.Errorf("flow count = %d, want exactly 1", count)
	}
}

func TestUpdateAbsentFlow(t *testing.T) {
	s := New()

	err := s.Update(context.Background(), &core.Flow{UserID: 5, Kind: core.FlowSendValue})
	if !store.IsErrNotFound(err) {
		t.Errorf("Update without Begin: err = %v, want not-found", err)
	}
}

func TestClearIsTerminal(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.Begin(ctx, &core.Flow{UserID: 2, Kind: core.FlowSendValue, Step: core.StepAwaitingConfirmation})
	if err := s.Clear(ctx, 2); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Find(ctx, 2); !store.IsErrNotFound(err) {
		t.Errorf("Find after Clear: err = %v, want not-found", err)
	}
}

func TestListIdle(t *testing.T) {
	ctx := context.Background()
	s := New().(*flowStore)

	_ = s.Begin(ctx, &core.Flow{UserID: 10, Kind: core.FlowImportWallet})
	_ = s.Begin(ctx, &core.Flow{UserID: 11, Kind: core.FlowImportWallet})

	// age one of them past the cutoff by hand
	sh := s.shard(10)
	sh.mux.Lock()
	sh.flows[10].UpdatedAt = time.Now().Add(-time.Hour)
	sh.mux.Unlock()

	idle, err := s.ListIdle(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("list idle: %v", err)
	}
	if len(idle) != 1 || idle[0] != 10 {
		t.Errorf("ListIdle = %v, want [10]", idle)
	}
}
