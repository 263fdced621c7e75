package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tradlabs/trad-wallet-bot/core"
)

type fakeGateway struct {
	balance   decimal.Decimal
	signature string
	submitErr error

	submits int
}

func (g *fakeGateway) Balance(ctx context.Context, publicKey string) decimal.Decimal {
	return g.balance
}

func (g *fakeGateway) Submit(ctx context.Context, secretKey, destination string, amount decimal.Decimal) (string, error) {
	g.submits++
	if g.submitErr != nil {
		return "", g.submitErr
	}
	return g.signature, nil
}

func (g *fakeGateway) Signatures(ctx context.Context, publicKey string, limit int) ([]*core.SignatureInfo, error) {
	return nil, nil
}

func newService(g core.Gateway) core.TransferService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(g, logger, Config{Reserve: decimal.RequireFromString("0.00001")})
}

func TestExecuteConfirmed(t *testing.T) {
	gw := &fakeGateway{balance: decimal.RequireFromString("1.0"), signature: "5ig"}
	svc := newService(gw)

	wallet := &core.Wallet{UserID: 1, PublicKey: "pub", SecretKey: "sec"}
	req := &core.TransferRequest{TraceID: "t-1", UserID: 1, Destination: "dest", Amount: decimal.RequireFromString("0.3")}

	out := svc.Execute(context.Background(), wallet, req)
	if out.Kind != core.OutcomeConfirmed || out.Signature != "5ig" {
		t.Fatalf("outcome = %+v, want Confirmed(5ig)", out)
	}
	if gw.submits != 1 {
		t.Errorf("submit count = %d, want exactly 1", gw.submits)
	}
}

func TestExecuteRechecksBalance(t *testing.T) {
	// the amount was fine at prompt time, but the balance has moved
	gw := &fakeGateway{balance: decimal.RequireFromString("0.2")}
	svc := newService(gw)

	req := &core.TransferRequest{TraceID: "t-2", Destination: "dest", Amount: decimal.RequireFromString("0.3")}
	out := svc.Execute(context.Background(), &core.Wallet{PublicKey: "pub"}, req)

	if out.Kind != core.OutcomeRejected || out.Reason != core.RejectInsufficientBalance {
		t.Fatalf("outcome = %+v, want Rejected(insufficient_balance)", out)
	}
	if gw.submits != 0 {
		t.Errorf("submit was called for a rejected transfer")
	}
}

func TestExecuteReserveCounts(t *testing.T) {
	// balance exactly equals amount: the reserve must tip it into rejection
	gw := &fakeGateway{balance: decimal.RequireFromString("0.3")}
	svc := newService(gw)

	req := &core.TransferRequest{TraceID: "t-3", Destination: "dest", Amount: decimal.RequireFromString("0.3")}
	if out := svc.Execute(context.Background(), &core.Wallet{}, req); out.Kind != core.OutcomeRejected {
		t.Fatalf("outcome = %+v, want rejection when amount leaves no fee room", out)
	}
}

func TestExecuteGatewayFailureNoRetry(t *testing.T) {
	gw := &fakeGateway{
		balance:   decimal.RequireFromString("1.0"),
		submitErr: errors.New("rpc connection reset"),
	}
	svc := newService(gw)

	req := &core.TransferRequest{TraceID: "t-4", Destination: "dest", Amount: decimal.RequireFromString("0.1")}
	out := svc.Execute(context.Background(), &core.Wallet{}, req)

	if out.Kind != core.OutcomeErrored {
		t.Fatalf("outcome = %+v, want Errored", out)
	}
	if gw.submits != 1 {
		t.Errorf("submit count = %d, want exactly 1 (no retry on failure)", gw.submits)
	}
}
