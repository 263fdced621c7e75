package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/tradlabs/trad-wallet-bot/core"
	"github.com/zyedidia/generic/mapset"
)

type Config struct {
	// TTL is how long a flow may sit untouched before it is abandoned.
	TTL time.Duration `valid:"required"`
	// Interval between sweeps.
	Interval time.Duration `valid:"required"`
}

type Janitor struct {
	flows  core.FlowStore
	logger *slog.Logger
	cfg    Config
}

func New(
	flows core.FlowStore,
	logger *slog.Logger,
	cfg Config,
) *Janitor {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Janitor{
		flows:  flows,
		logger: logger.With("worker", "janitor"),
		cfg:    cfg,
	}
}

func (w *Janitor) Run(ctx context.Context) error {
	w.logger.Info("janitor start", "ttl", w.cfg.TTL)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.Interval):
			_ = w.run(ctx)
		}
	}
}

func (w *Janitor) run(ctx context.Context) error {
	cutoff := time.Now().Add(-w.cfg.TTL)

	users, err := w.flows.ListIdle(ctx, cutoff)
	if err != nil {
		w.logger.Error("flows.ListIdle", "err", err)
		return err
	}

	if len(users) == 0 {
		return nil
	}

	// ListIdle does not promise distinct users; clear each at most once.
	cleared := mapset.New[core.UserID]()

	for _, userID := range users {
		if cleared.Has(userID) {
			continue
		}

		if err := w.flows.Clear(ctx, userID); err != nil {
			w.logger.Error("flows.Clear", "user_id", userID, "err", err)
			return err
		}

		cleared.Put(userID)
	}

	w.logger.Info("abandoned flows cleared", "count", cleared.Size())
	return nil
}
