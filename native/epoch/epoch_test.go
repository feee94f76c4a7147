package epoch

import (
	"errors"
	"math/big"
	"testing"

	"synthpool/native/unit"
	"synthpool/storage"
)

type fakeCumulative struct {
	value *big.Int
	err   error
}

func (f *fakeCumulative) CumulativePrice(string, uint8) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.value), nil
}

type fakeSupply struct {
	value *big.Int
	err   error
}

func (f *fakeSupply) TotalSupply(string) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.value), nil
}

func newEpoch(t *testing.T, source *fakeCumulative, supply *fakeSupply) *Epoch {
	t.Helper()
	engine := New(storage.NewState(storage.NewMemDB()), source, supply)
	if err := engine.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return engine
}

// bindOracle points the window at a pair without moving the start timestamp,
// so the first NextEpoch still takes the seeding path.
func bindOracle(t *testing.T, engine *Epoch) {
	t.Helper()
	if err := engine.ConfigOracle("pair1", 0, 0); err != nil {
		t.Fatalf("config oracle: %v", err)
	}
}

func TestFirstNextEpochSeedsWindow(t *testing.T) {
	source := &fakeCumulative{value: big.NewInt(9_999)}
	supply := &fakeSupply{value: unit.Scale(400_000)}
	engine := newEpoch(t, source, supply)

	// Advancing before the price source is bound waits for configuration.
	if _, err := engine.NextEpoch("synth", 1_000); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	bindOracle(t, engine)

	twap, err := engine.NextEpoch("synth", 1_000)
	if err != nil {
		t.Fatalf("next epoch: %v", err)
	}
	if twap.Sign() != 0 {
		t.Fatalf("first twap = %s, want 0", twap)
	}
	state, err := engine.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.StartTimestamp != 1_000 {
		t.Fatalf("start = %d, want 1000", state.StartTimestamp)
	}
	if state.MaxSupply != nil || state.BaseSupply != nil {
		t.Fatalf("first roll must not set a supply ceiling: %+v", state)
	}
	if state.PriceCumulativeLast.Cmp(big.NewInt(9_999)) != 0 {
		t.Fatalf("cumulative = %s, want 9999", state.PriceCumulativeLast)
	}
}

func TestNextEpochGate(t *testing.T) {
	source := &fakeCumulative{value: big.NewInt(0)}
	supply := &fakeSupply{value: unit.Scale(1)}
	engine := newEpoch(t, source, supply)
	bindOracle(t, engine)
	if err := engine.ConfigEpoch(600, nil, nil); err != nil {
		t.Fatalf("config epoch: %v", err)
	}
	if _, err := engine.NextEpoch("synth", 1_000); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := engine.NextEpoch("synth", 1_500); !errors.Is(err, ErrEpochNotElapsed) {
		t.Fatalf("expected not elapsed, got %v", err)
	}
}

func TestNextEpochComputesCeiling(t *testing.T) {
	source := &fakeCumulative{value: big.NewInt(0)}
	supply := &fakeSupply{value: unit.Scale(400_000)}
	engine := newEpoch(t, source, supply)
	bindOracle(t, engine)
	if err := engine.ConfigEpoch(600, big.NewInt(1_500_000), nil); err != nil {
		t.Fatalf("config epoch: %v", err)
	}
	if _, err := engine.NextEpoch("synth", 1_000); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Cumulative grows by 2.0 units/sec: twap 2.0 clears the 1.5 ceiling.
	source.value = big.NewInt(600 * 2_000_000)
	twap, err := engine.NextEpoch("synth", 1_600)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if twap.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Fatalf("twap = %s, want 2000000", twap)
	}
	state, err := engine.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	// 400k supply sits in the first tier (rate 450 per million).
	wantMax := unit.MulDivPrecision(unit.Scale(400_000), big.NewInt(1_000_450))
	if state.MaxSupply == nil || state.MaxSupply.Cmp(wantMax) != 0 {
		t.Fatalf("max supply = %v, want %s", state.MaxSupply, wantMax)
	}
	if state.BaseSupply.Cmp(unit.Scale(400_000)) != 0 {
		t.Fatalf("base supply = %s", state.BaseSupply)
	}
	if state.StartTimestamp != 1_600 {
		t.Fatalf("start = %d, want 1600", state.StartTimestamp)
	}
}

func TestNextEpochFreezesSupplyAboveTopTier(t *testing.T) {
	source := &fakeCumulative{value: big.NewInt(0)}
	supply := &fakeSupply{value: unit.Scale(60_000_000)}
	engine := newEpoch(t, source, supply)
	bindOracle(t, engine)
	if err := engine.ConfigEpoch(600, big.NewInt(1_500_000), big.NewInt(200)); err != nil {
		t.Fatalf("config epoch: %v", err)
	}
	if _, err := engine.NextEpoch("synth", 1_000); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// TWAP 2.0 clears the ceiling, but the supply sits past the last tier
	// breakpoint: the new window grants no headroom at all.
	source.value = big.NewInt(600 * 2_000_000)
	if _, err := engine.NextEpoch("synth", 1_600); err != nil {
		t.Fatalf("roll: %v", err)
	}
	state, err := engine.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.MaxSupply == nil || state.MaxSupply.Cmp(unit.Scale(60_000_000)) != 0 {
		t.Fatalf("max supply = %v, want frozen at 60000000 tokens", state.MaxSupply)
	}
	if err := engine.AssertMintAmount("synth", big.NewInt(1), 2_000); !errors.Is(err, ErrMintAmountTooLarge) {
		t.Fatalf("expected any mint to be rejected, got %v", err)
	}
}

func TestExpansionRateTiers(t *testing.T) {
	state := &State{CeilPrice: big.NewInt(1_500_000)}
	twap := big.NewInt(2_000_000)

	cases := []struct {
		supply *big.Int
		want   int64
	}{
		{unit.Scale(0), 450},
		{unit.Scale(499_999), 450},
		{unit.Scale(500_000), 400},
		{unit.Scale(1_499_999), 350},
		{unit.Scale(2_000_000), 250},
		{unit.Scale(20_000_000), 125},
		{unit.Scale(49_999_999), 125},
	}
	for _, tc := range cases {
		rate := state.expansionRate(tc.supply, twap)
		if rate == nil || rate.Int64() != tc.want {
			t.Fatalf("rate(%s) = %v, want %d", tc.supply, rate, tc.want)
		}
	}

	// No ceiling configured, or TWAP at/below it: no expansion.
	none := &State{}
	if rate := none.expansionRate(unit.Scale(1), twap); rate != nil {
		t.Fatalf("expected nil rate without ceiling, got %s", rate)
	}
	if rate := state.expansionRate(unit.Scale(1), big.NewInt(1_500_000)); rate != nil {
		t.Fatalf("expected nil rate at ceiling, got %s", rate)
	}

	// At or past the top breakpoint the supply is outside every tier: no
	// further expansion, even with a policy floor configured.
	state.MaxExpansionRate = big.NewInt(300)
	if rate := state.expansionRate(unit.Scale(50_000_000), twap); rate != nil {
		t.Fatalf("expected nil rate at top breakpoint, got %s", rate)
	}
	if rate := state.expansionRate(unit.Scale(90_000_000), twap); rate != nil {
		t.Fatalf("expected nil rate past top breakpoint, got %s", rate)
	}

	// A configured policy cap acts as a floor on the tier rate.
	if rate := state.expansionRate(unit.Scale(30_000_000), twap); rate.Int64() != 300 {
		t.Fatalf("floored rate = %s, want 300", rate)
	}
	if rate := state.expansionRate(unit.Scale(0), twap); rate.Int64() != 450 {
		t.Fatalf("rate above floor = %s, want 450", rate)
	}
}

func TestAllowedSupplyRamp(t *testing.T) {
	state := &State{
		StartTimestamp: 1_000,
		EpochDuration:  600,
		BaseSupply:     big.NewInt(1_000),
		MaxSupply:      big.NewInt(2_000),
	}
	if got := state.allowedSupply(1_150); got.Cmp(big.NewInt(1_500)) != 0 {
		t.Fatalf("halfway through ramp = %s, want 1500", got)
	}
	if got := state.allowedSupply(1_300); got.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("at half duration = %s, want 2000", got)
	}
	if got := state.allowedSupply(9_999); got.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("after half duration = %s, want 2000", got)
	}
	unconstrained := &State{}
	if got := unconstrained.allowedSupply(1_000); got != nil {
		t.Fatalf("unconstrained window must return nil, got %s", got)
	}
}

func TestAssertMintAmount(t *testing.T) {
	source := &fakeCumulative{value: big.NewInt(0)}
	supply := &fakeSupply{value: unit.Scale(400_000)}
	engine := newEpoch(t, source, supply)

	// Unconstrained window allows any amount.
	if err := engine.AssertMintAmount("synth", unit.Scale(1_000_000), 1_000); err != nil {
		t.Fatalf("unconstrained assert: %v", err)
	}

	bindOracle(t, engine)
	if err := engine.ConfigEpoch(600, big.NewInt(1_500_000), nil); err != nil {
		t.Fatalf("config epoch: %v", err)
	}
	if _, err := engine.NextEpoch("synth", 1_000); err != nil {
		t.Fatalf("seed: %v", err)
	}
	source.value = big.NewInt(600 * 2_000_000)
	if _, err := engine.NextEpoch("synth", 1_600); err != nil {
		t.Fatalf("roll: %v", err)
	}

	// Past the ramp the ceiling is base*(1+450/1e6).
	headroom := unit.MulDivPrecision(unit.Scale(400_000), big.NewInt(450))
	if err := engine.AssertMintAmount("synth", headroom, 2_000); err != nil {
		t.Fatalf("mint at ceiling should pass: %v", err)
	}
	over := new(big.Int).Add(headroom, big.NewInt(1))
	if err := engine.AssertMintAmount("synth", over, 2_000); !errors.Is(err, ErrMintAmountTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestConfigEpochRejectsSubUnitCeil(t *testing.T) {
	engine := newEpoch(t, &fakeCumulative{value: big.NewInt(0)}, &fakeSupply{value: big.NewInt(0)})
	if err := engine.ConfigEpoch(600, big.NewInt(999_999), nil); !errors.Is(err, ErrCeilPriceTooLow) {
		t.Fatalf("expected ceil too low, got %v", err)
	}
	if err := engine.ConfigEpoch(600, big.NewInt(1_000_000), nil); err != nil {
		t.Fatalf("one-unit ceiling should be accepted: %v", err)
	}
}

func TestConfigOracleReseedsBaseline(t *testing.T) {
	source := &fakeCumulative{value: big.NewInt(777)}
	engine := newEpoch(t, source, &fakeSupply{value: big.NewInt(0)})
	if err := engine.ConfigEpoch(600, big.NewInt(1_500_000), big.NewInt(200)); err != nil {
		t.Fatalf("config epoch: %v", err)
	}
	if err := engine.ConfigOracle("pair1", 1, 5_000); err != nil {
		t.Fatalf("config oracle: %v", err)
	}
	state, err := engine.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.PairAddr != "pair1" || state.BaseIndex != 1 {
		t.Fatalf("pair = %s/%d, want pair1/1", state.PairAddr, state.BaseIndex)
	}
	if state.StartTimestamp != 5_000 || state.PriceCumulativeLast.Cmp(big.NewInt(777)) != 0 {
		t.Fatalf("baseline = %d/%s, want 5000/777", state.StartTimestamp, state.PriceCumulativeLast)
	}
	// Policy knobs survive an oracle re-point.
	if state.EpochDuration != 600 || state.CeilPrice == nil || state.MaxExpansionRate == nil {
		t.Fatalf("policy lost on reconfig: %+v", state)
	}

	if err := engine.ConfigOracle("pair1", 3, 5_000); !errors.Is(err, ErrInvalidBaseIndex) {
		t.Fatalf("expected invalid base index, got %v", err)
	}
}
