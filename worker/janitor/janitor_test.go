package janitor

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/tradlabs/trad-wallet-bot/core"
	flowstore "github.com/tradlabs/trad-wallet-bot/store/flow"
)

func TestRunClearsOnlyIdleFlows(t *testing.T) {
	ctx := context.Background()
	flows := flowstore.New()

	stale := &core.Flow{UserID: 3, Kind: core.FlowSendValue, Step: core.StepAwaitingDestination}
	if err := flows.Begin(ctx, stale); err != nil {
		t.Fatal(err)
	}

	// the store stamps UpdatedAt itself, so age the stale flow for real
	time.Sleep(100 * time.Millisecond)

	if err := flows.Begin(ctx, &core.Flow{UserID: 1, Kind: core.FlowSendValue, Step: core.StepAwaitingAmount}); err != nil {
		t.Fatal(err)
	}
	if err := flows.Begin(ctx, &core.Flow{UserID: 2, Kind: core.FlowImportWallet}); err != nil {
		t.Fatal(err)
	}

	w := New(flows, slog.Default(), Config{
		TTL:      50 * time.Millisecond,
		Interval: time.Second,
	})

	if err := w.run(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := flows.Find(ctx, 3); err != core.ErrFlowNotFound {
		t.Fatalf("stale flow should be cleared, got err %v", err)
	}

	for _, userID := range []core.UserID{1, 2} {
		if _, err := flows.Find(ctx, userID); err != nil {
			t.Fatalf("fresh flow for user %d should survive: %v", userID, err)
		}
	}
}

func TestRunEmptyStore(t *testing.T) {
	w := New(flowstore.New(), slog.Default(), Config{
		TTL:      time.Minute,
		Interval: time.Second,
	})

	if err := w.run(context.Background()); err != nil {
		t.Fatal(err)
	}
}
