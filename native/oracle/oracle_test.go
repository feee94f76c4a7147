package oracle

import (
	"errors"
	"math/big"
	"testing"

	"synthpool/storage"
)

type fakeSource struct {
	cumulative *big.Int
	reserves   [2]*big.Int
	err        error
}

func (f *fakeSource) CumulativePrice(string, uint8) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Set(f.cumulative), nil
}

func (f *fakeSource) Reserves(string) ([2]*big.Int, error) {
	if f.err != nil {
		return [2]*big.Int{}, f.err
	}
	return f.reserves, nil
}

func newOracle(t *testing.T, source *fakeSource) *PairOracle {
	t.Helper()
	return NewPairOracle(storage.NewState(storage.NewMemDB()), source, SynthOracleName)
}

func TestTwapUnavailableUntilFirstUpdate(t *testing.T) {
	source := &fakeSource{cumulative: big.NewInt(1_000)}
	oracle := newOracle(t, source)
	if err := oracle.Config("pair1", 0, 0, 100); err != nil {
		t.Fatalf("config: %v", err)
	}
	if _, _, err := oracle.TWAP(); !errors.Is(err, ErrPriceUnavailableOrOutdated) {
		t.Fatalf("expected unavailable before first update, got %v", err)
	}

	// Cumulative grows by 2.0 units/sec over the default 600s window.
	source.cumulative = big.NewInt(1_000 + 600*2_000_000)
	state, err := oracle.UpdateTWAP(700)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if state.Twap.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Fatalf("twap = %s, want 2000000", state.Twap)
	}

	twap, lastUpdate, err := oracle.TWAP()
	if err != nil {
		t.Fatalf("twap: %v", err)
	}
	if twap.Cmp(big.NewInt(2_000_000)) != 0 || lastUpdate != 700 {
		t.Fatalf("twap = %s at %d, want 2000000 at 700", twap, lastUpdate)
	}
}

func TestUpdateBeforePeriodElapsed(t *testing.T) {
	source := &fakeSource{cumulative: big.NewInt(0)}
	oracle := newOracle(t, source)
	if err := oracle.Config("pair1", 0, 600, 100); err != nil {
		t.Fatalf("config: %v", err)
	}
	if _, err := oracle.UpdateTWAP(699); !errors.Is(err, ErrTwapPeriodNotElapsed) {
		t.Fatalf("expected not elapsed, got %v", err)
	}
}

func TestCumulativePriceRegressed(t *testing.T) {
	source := &fakeSource{cumulative: big.NewInt(5_000)}
	oracle := newOracle(t, source)
	if err := oracle.Config("pair1", 0, 0, 0); err != nil {
		t.Fatalf("config: %v", err)
	}
	source.cumulative = big.NewInt(4_000)
	if _, err := oracle.UpdateTWAP(600); !errors.Is(err, ErrCumulativePriceRegressed) {
		t.Fatalf("expected regression error, got %v", err)
	}
}

func TestSpotPrice(t *testing.T) {
	source := &fakeSource{
		cumulative: big.NewInt(0),
		reserves:   [2]*big.Int{big.NewInt(2_000_000), big.NewInt(4_000_000)},
	}
	oracle := newOracle(t, source)
	if err := oracle.Config("pair1", 0, 0, 0); err != nil {
		t.Fatalf("config: %v", err)
	}
	price, err := oracle.SpotPrice()
	if err != nil {
		t.Fatalf("spot: %v", err)
	}
	// quote/base = 4/2 = 2.0 in protocol units.
	if price.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Fatalf("spot = %s, want 2000000", price)
	}

	// Flipping the base index inverts the quote selection.
	if err := oracle.Config("pair1", 1, 0, 0); err != nil {
		t.Fatalf("reconfig: %v", err)
	}
	price, err = oracle.SpotPrice()
	if err != nil {
		t.Fatalf("spot: %v", err)
	}
	if price.Cmp(big.NewInt(500_000)) != 0 {
		t.Fatalf("spot = %s, want 500000", price)
	}
}

func TestSpotPriceZeroBaseReserve(t *testing.T) {
	source := &fakeSource{
		cumulative: big.NewInt(0),
		reserves:   [2]*big.Int{big.NewInt(0), big.NewInt(4_000_000)},
	}
	oracle := newOracle(t, source)
	if err := oracle.Config("pair1", 0, 0, 0); err != nil {
		t.Fatalf("config: %v", err)
	}
	if _, err := oracle.SpotPrice(); !errors.Is(err, ErrEmptyPairReserve) {
		t.Fatalf("expected empty reserve error, got %v", err)
	}
}

func TestConfigResetsObservationWindow(t *testing.T) {
	source := &fakeSource{cumulative: big.NewInt(1_000)}
	oracle := newOracle(t, source)
	if err := oracle.Config("pair1", 0, 0, 0); err != nil {
		t.Fatalf("config: %v", err)
	}
	source.cumulative = big.NewInt(1_000 + 600*1_000_000)
	if _, err := oracle.UpdateTWAP(600); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Re-pointing the oracle samples the counter afresh and drops the TWAP.
	if err := oracle.Config("pair2", 0, 0, 600); err != nil {
		t.Fatalf("reconfig: %v", err)
	}
	if _, _, err := oracle.TWAP(); !errors.Is(err, ErrPriceUnavailableOrOutdated) {
		t.Fatalf("expected unavailable after reconfig, got %v", err)
	}
	state, err := oracle.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.PairAddr != "pair2" || state.LastUpdate != 600 {
		t.Fatalf("state = %+v, want pair2 at 600", state)
	}
}

func TestInvalidBaseIndex(t *testing.T) {
	oracle := newOracle(t, &fakeSource{cumulative: big.NewInt(0)})
	if err := oracle.Config("pair1", 2, 0, 0); !errors.Is(err, ErrInvalidBaseIndex) {
		t.Fatalf("expected invalid base index, got %v", err)
	}
}

func TestUnconfiguredOracle(t *testing.T) {
	oracle := newOracle(t, &fakeSource{cumulative: big.NewInt(0)})
	if _, err := oracle.UpdateTWAP(600); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	if _, _, err := oracle.TWAP(); !errors.Is(err, ErrPriceUnavailableOrOutdated) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
