package keeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"synthpool/native/epoch"
	"synthpool/native/oracle"
	"synthpool/native/pool"
	"synthpool/observability/metrics"
)

// DefaultInterval spaces the keeper's maintenance passes.
const DefaultInterval = time.Minute

// Keeper drives the periodic maintenance actions: TWAP updates for both
// oracles, epoch rollover and the collateral-ratio refresh. Each action is
// best-effort and rate-limited by its own stored gate, so "not yet" outcomes
// are skips, not failures, and one oracle's readiness never blocks the other.
type Keeper struct {
	pool     *pool.Engine
	oracles  []*oracle.PairOracle
	log      *slog.Logger
	metrics  *metrics.KeeperMetrics
	clock    func() time.Time
	interval time.Duration
}

// New constructs a keeper over the pool engine and its two oracles.
func New(poolEngine *pool.Engine, oracles []*oracle.PairOracle, log *slog.Logger, interval time.Duration) *Keeper {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Keeper{
		pool:     poolEngine,
		oracles:  oracles,
		log:      log,
		metrics:  metrics.Keeper(),
		clock:    time.Now,
		interval: interval,
	}
}

// SetClock overrides the time source for deterministic tests.
func (k *Keeper) SetClock(clock func() time.Time) {
	if k == nil || clock == nil {
		return
	}
	k.clock = clock
}

// Run executes maintenance passes until the context is cancelled.
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			k.RunOnce()
		}
	}
}

// RunOnce performs a single maintenance pass.
func (k *Keeper) RunOnce() {
	now := uint64(k.clock().Unix())
	k.updateOracles(now)
	k.advanceEpoch(now)
	k.refreshRatio(now)
}

func (k *Keeper) updateOracles(now uint64) {
	for _, o := range k.oracles {
		state, err := o.UpdateTWAP(now)
		switch {
		case err == nil:
			k.metrics.ObserveOracleUpdate(o.Name(), metrics.OutcomeOK)
			k.log.Info("twap updated",
				"oracle", o.Name(), "twap", state.Twap.String(), "lastUpdate", state.LastUpdate)
		case errors.Is(err, oracle.ErrTwapPeriodNotElapsed), errors.Is(err, oracle.ErrNotConfigured):
			k.metrics.ObserveOracleUpdate(o.Name(), metrics.OutcomeSkipped)
			k.log.Debug("twap update skipped", "oracle", o.Name(), "reason", err.Error())
		default:
			k.metrics.ObserveOracleUpdate(o.Name(), metrics.OutcomeError)
			k.log.Warn("twap update failed", "oracle", o.Name(), "error", err.Error())
		}
	}
}

func (k *Keeper) advanceEpoch(now uint64) {
	twap, err := k.pool.AdvanceEpoch(now)
	switch {
	case err == nil:
		k.metrics.ObserveEpochAdvance(metrics.OutcomeOK)
		k.log.Info("epoch advanced", "twap", twap.String(), "now", now)
	case errors.Is(err, epoch.ErrEpochNotElapsed),
		errors.Is(err, epoch.ErrNotInitialised),
		errors.Is(err, epoch.ErrNotConfigured):
		k.metrics.ObserveEpochAdvance(metrics.OutcomeSkipped)
		k.log.Debug("epoch advance skipped", "reason", err.Error())
	default:
		k.metrics.ObserveEpochAdvance(metrics.OutcomeError)
		k.log.Warn("epoch advance failed", "error", err.Error())
	}
}

func (k *Keeper) refreshRatio(now uint64) {
	ratio, err := k.pool.RefreshCollateralRatio(now)
	switch {
	case err == nil:
		k.metrics.ObserveRatioRefresh(metrics.OutcomeOK)
		k.log.Info("collateral ratio refreshed", "ratio", ratio.String(), "now", now)
	case errors.Is(err, pool.ErrCollateralRatioRefreshCooldown),
		errors.Is(err, oracle.ErrPriceUnavailableOrOutdated),
		errors.Is(err, pool.ErrNotInitialised):
		k.metrics.ObserveRatioRefresh(metrics.OutcomeSkipped)
		k.log.Debug("collateral ratio refresh skipped", "reason", err.Error())
	default:
		k.metrics.ObserveRatioRefresh(metrics.OutcomeError)
		k.log.Warn("collateral ratio refresh failed", "error", err.Error())
	}
}
