package dodge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/lcu"
)

// GatewayProvider hands out a client for the current game-client endpoint,
// or lcu.ErrGatewayUnavailable.
type GatewayProvider interface {
	Gateway() (lcu.Client, error)
}

// Runner polls the watch while it is armed. A disconnected gateway leaves
// the watch armed; the next connected poll picks it back up.
type Runner struct {
	watch    *Watch
	gateways GatewayProvider
	interval time.Duration
	log      *zap.Logger
}

func NewRunner(watch *Watch, gateways GatewayProvider, interval time.Duration, log *zap.Logger) *Runner {
	return &Runner{watch: watch, gateways: gateways, interval: interval, log: log}
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, armed := r.watch.Armed(); !armed {
				continue
			}
			client, err := r.gateways.Gateway()
			if err != nil {
				continue
			}
			if _, err := r.watch.FireIfArmed(ctx, client); err != nil {
				r.log.Warn("auto dodge attempt failed", zap.Error(err))
			}
		}
	}
}
