package transfer

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tradlabs/trad-wallet-bot/core"
)

type Config struct {
	// Reserve is withheld from the spendable balance so the sender can
	// still cover the network fee after the transfer lands.
	Reserve decimal.Decimal
}

func New(gateway core.Gateway, logger *slog.Logger, cfg Config) core.TransferService {
	return &service{
		gateway: gateway,
		logger:  logger.With("service", "transfer"),
		cfg:     cfg,
	}
}

type service struct {
	gateway core.Gateway
	logger  *slog.Logger
	cfg     Config
}

// Execute runs the pipeline once: re-fetch balance, re-check sufficiency,
// submit, classify. The balance snapshot taken while prompting the user is
// never trusted here; funds may have moved between messages. Submit is
// dispatched at most once, whatever the outcome.
func (s *service) Execute(ctx context.Context, wallet *core.Wallet, req *core.TransferRequest) core.TransferOutcome {
	logger := s.logger.With("trace", req.TraceID)

	balance := s.gateway.Balance(ctx, wallet.PublicKey)
	if req.Amount.GreaterThan(balance.Sub(s.cfg.Reserve)) {
		logger.Info("transfer rejected", "reason", core.RejectInsufficientBalance, "amount", req.Amount, "balance", balance)
		return core.Rejected(core.RejectInsufficientBalance)
	}

	signature, err := s.gateway.Submit(ctx, wallet.SecretKey, req.Destination, req.Amount)
	if err != nil {
		logger.Error("gateway.Submit", "err", err)
		return core.Errored(err)
	}

	logger.Info("transfer confirmed", "signature", signature, "amount", req.Amount)
	return core.Confirmed(signature)
}
