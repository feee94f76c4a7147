package keeper

import (
	"math/big"
	"testing"
	"time"

	"synthpool/native/epoch"
	"synthpool/native/oracle"
	"synthpool/native/ownable"
	"synthpool/native/pool"
	"synthpool/native/unit"
	"synthpool/storage"
)

const testOwner = "owner"

type scriptedSource struct {
	cumulative *big.Int
	reserves   [2]*big.Int
}

func (s *scriptedSource) CumulativePrice(string, uint8) (*big.Int, error) {
	return new(big.Int).Set(s.cumulative), nil
}

func (s *scriptedSource) Reserves(string) ([2]*big.Int, error) {
	return s.reserves, nil
}

type staticSupply struct {
	value *big.Int
}

func (s *staticSupply) TotalSupply(string) (*big.Int, error) {
	return new(big.Int).Set(s.value), nil
}

type harness struct {
	keeper      *Keeper
	engine      *pool.Engine
	epoch       *epoch.Epoch
	synthOracle *oracle.PairOracle
	shareOracle *oracle.PairOracle
	synthSource *scriptedSource
	shareSource *scriptedSource
	now         uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	state := storage.NewState(storage.NewMemDB())
	owners := ownable.NewRegistry(state)
	synthSource := &scriptedSource{
		cumulative: big.NewInt(0),
		reserves:   [2]*big.Int{big.NewInt(1_000_000), big.NewInt(1_000_000)},
	}
	shareSource := &scriptedSource{
		cumulative: big.NewInt(0),
		reserves:   [2]*big.Int{big.NewInt(1_000_000), big.NewInt(2_000_000)},
	}
	synthOracle := oracle.NewPairOracle(state, synthSource, oracle.SynthOracleName)
	shareOracle := oracle.NewPairOracle(state, shareSource, oracle.ShareOracleName)
	ep := epoch.New(state, synthSource, &staticSupply{value: big.NewInt(0)})
	engine := pool.NewEngine(state, owners, synthOracle, shareOracle, ep)
	engine.SetAddresses("pool", "router")

	requests, err := engine.Construct(pool.ConstructParams{
		Owner:           testOwner,
		CollateralDenom: "uusd",
		SynthName:       "Synth USD",
		SynthSymbol:     "sUSD",
		ShareName:       "Pool Share",
		ShareSymbol:     "PSH",
		ShareMaxCap:     unit.Scale(100_000_000),
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	for i, request := range requests {
		if err := engine.CompleteTokenDeploy(request.ID, []string{"synth-token", "share-token"}[i]); err != nil {
			t.Fatalf("complete deploy: %v", err)
		}
	}

	h := &harness{
		keeper:      New(engine, []*oracle.PairOracle{synthOracle, shareOracle}, nil, time.Second),
		engine:      engine,
		epoch:       ep,
		synthOracle: synthOracle,
		shareOracle: shareOracle,
		synthSource: synthSource,
		shareSource: shareSource,
	}
	h.keeper.SetClock(func() time.Time {
		return time.Unix(int64(h.now), 0)
	})
	return h
}

func TestRunOnceUpdatesReadyOraclesIndependently(t *testing.T) {
	h := newHarness(t)
	// Synth updates every 300s, share every 600s.
	if err := h.engine.ConfigSynthOracle(testOwner, "synth-pair", 0, 300, 0); err != nil {
		t.Fatalf("config synth oracle: %v", err)
	}
	if err := h.engine.ConfigShareOracle(testOwner, "share-pair", 0, 600, 0); err != nil {
		t.Fatalf("config share oracle: %v", err)
	}
	h.synthSource.cumulative = big.NewInt(400 * 1_000_000)
	h.shareSource.cumulative = big.NewInt(400 * 2_000_000)

	h.now = 400
	h.keeper.RunOnce()

	// Only the synth oracle was due; its skip must not block the update.
	if _, _, err := h.synthOracle.TWAP(); err != nil {
		t.Fatalf("synth twap should exist: %v", err)
	}
	if _, _, err := h.shareOracle.TWAP(); err == nil {
		t.Fatalf("share twap should still be pending")
	}

	h.now = 700
	h.keeper.RunOnce()
	if _, _, err := h.shareOracle.TWAP(); err != nil {
		t.Fatalf("share twap should exist after period: %v", err)
	}
}

func TestRunOnceRefreshesRatioWhenTwapFresh(t *testing.T) {
	h := newHarness(t)
	if err := h.engine.SetMinCollateralRatio(testOwner, big.NewInt(900_000)); err != nil {
		t.Fatalf("set min ratio: %v", err)
	}
	if err := h.engine.ConfigSynthOracle(testOwner, "synth-pair", 0, 600, 0); err != nil {
		t.Fatalf("config synth oracle: %v", err)
	}

	// First pass: no TWAP yet, the refresh skips.
	h.now = 300
	h.keeper.RunOnce()

	// Second pass: synth trades at 2.0, the TWAP lands and the ratio steps
	// down one notch.
	h.synthSource.cumulative = big.NewInt(700 * 2_000_000)
	h.now = 700
	h.keeper.RunOnce()

	ratio, err := h.engine.RefreshCollateralRatio(1_400)
	if err != nil {
		t.Fatalf("manual refresh after keeper pass: %v", err)
	}
	// 997500 after the keeper's refresh, 995000 after the manual one.
	if ratio.Cmp(big.NewInt(995_000)) != 0 {
		t.Fatalf("ratio = %s, want 995000", ratio)
	}
}

func TestRunOnceToleratesUnconstructedGates(t *testing.T) {
	h := newHarness(t)
	// No oracle config, no epoch policy: every action skips, none panics.
	h.now = 10_000
	h.keeper.RunOnce()
	h.keeper.RunOnce()

	// The unbound epoch window must not have been seeded by the passes.
	state, err := h.epoch.State()
	if err != nil {
		t.Fatalf("epoch state: %v", err)
	}
	if state.PairAddr != "" || state.StartTimestamp != 0 {
		t.Fatalf("unconfigured epoch was advanced: %+v", state)
	}
}
