package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded against keeper actions.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

type KeeperMetrics struct {
	oracleUpdates  *prometheus.CounterVec
	epochAdvances  *prometheus.CounterVec
	ratioRefreshes *prometheus.CounterVec
}

var (
	keeperOnce     sync.Once
	keeperRegistry *KeeperMetrics
)

// Keeper returns the lazily-initialised metrics registry for the background
// keeper loop.
func Keeper() *KeeperMetrics {
	keeperOnce.Do(func() {
		keeperRegistry = &KeeperMetrics{
			oracleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "synthpool",
				Subsystem: "keeper",
				Name:      "oracle_updates_total",
				Help:      "TWAP update attempts segmented by oracle and outcome.",
			}, []string{"oracle", "outcome"}),
			epochAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "synthpool",
				Subsystem: "keeper",
				Name:      "epoch_advances_total",
				Help:      "Epoch rollover attempts segmented by outcome.",
			}, []string{"outcome"}),
			ratioRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "synthpool",
				Subsystem: "keeper",
				Name:      "collateral_ratio_refreshes_total",
				Help:      "Collateral ratio refresh attempts segmented by outcome.",
			}, []string{"outcome"}),
		}
		prometheus.MustRegister(
			keeperRegistry.oracleUpdates,
			keeperRegistry.epochAdvances,
			keeperRegistry.ratioRefreshes,
		)
	})
	return keeperRegistry
}

func (m *KeeperMetrics) ObserveOracleUpdate(oracle, outcome string) {
	if m == nil {
		return
	}
	m.oracleUpdates.WithLabelValues(oracle, outcome).Inc()
}

func (m *KeeperMetrics) ObserveEpochAdvance(outcome string) {
	if m == nil {
		return
	}
	m.epochAdvances.WithLabelValues(outcome).Inc()
}

func (m *KeeperMetrics) ObserveRatioRefresh(outcome string) {
	if m == nil {
		return
	}
	m.ratioRefreshes.WithLabelValues(outcome).Inc()
}
