package epoch

import (
	"errors"
	"math/big"
	"strings"

	"synthpool/core/events"
	"synthpool/native/unit"
)

var (
	// ErrEpochNotElapsed is returned when an advance arrives before the
	// configured duration has passed since the window opened.
	ErrEpochNotElapsed = errors.New("epoch: duration not elapsed")
	// ErrMintAmountTooLarge is returned when a mint would push the synth
	// supply past the allowed ceiling for the current window.
	ErrMintAmountTooLarge = errors.New("epoch: mint amount exceeds allowed supply")
	// ErrCeilPriceTooLow is returned when a configured ceiling price is below
	// one whole unit. Sub-unit ceilings are nonsensical.
	ErrCeilPriceTooLow = errors.New("epoch: ceil price cannot be below one unit")
	// ErrInvalidBaseIndex is returned when the base token index is not 0 or 1.
	ErrInvalidBaseIndex = errors.New("epoch: base index must be 0 or 1")
	// ErrNotInitialised is returned when the epoch record was never seeded.
	ErrNotInitialised = errors.New("epoch: state not initialised")
	// ErrNotConfigured is returned when the window has no price source bound
	// yet; advancing waits for ConfigOracle.
	ErrNotConfigured = errors.New("epoch: oracle not configured")
	// ErrCumulativePriceRegressed is returned when the pair's cumulative
	// price moved backwards across the window.
	ErrCumulativePriceRegressed = errors.New("epoch: cumulative price regressed")

	errNilState     = errors.New("epoch: storage not configured")
	errNilSource    = errors.New("epoch: price source not configured")
	errNilSupply    = errors.New("epoch: supply querier not configured")
	errEmptyPair    = errors.New("epoch: pair address required")
	errNilAmount    = errors.New("epoch: nil amount")
	errCorruptState = errors.New("epoch: stored amount corrupted")
)

var epochStateKey = []byte("pool/epoch")

// Supply breakpoints in protocol units and the matching per-window expansion
// rates. Rates shrink as outstanding supply climbs the tiers.
var (
	supplyTiers = []*big.Int{
		unit.Scale(0),
		unit.Scale(500_000),
		unit.Scale(1_000_000),
		unit.Scale(1_500_000),
		unit.Scale(2_000_000),
		unit.Scale(5_000_000),
		unit.Scale(10_000_000),
		unit.Scale(20_000_000),
		unit.Scale(50_000_000),
	}
	expansionRates = []int64{450, 400, 350, 300, 250, 200, 150, 125, 100}
)

// Storage abstracts the subset of state functionality the epoch needs.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// CumulativePriceSource reads the cumulative price counter of an AMM pair.
type CumulativePriceSource interface {
	CumulativePrice(pairAddr string, baseIndex uint8) (*big.Int, error)
}

// SupplyQuerier reads the circulating supply of an external token.
type SupplyQuerier interface {
	TotalSupply(token string) (*big.Int, error)
}

// State is the persisted expansion-policy window. The optional fields stay
// nil until policy is configured: a nil MaxSupply means minting is
// unconstrained, a nil CeilPrice disables expansion entirely.
type State struct {
	PairAddr            string
	BaseIndex           uint8
	PriceCumulativeLast *big.Int
	StartTimestamp      uint64
	EpochDuration       uint64
	BaseSupply          *big.Int
	MaxSupply           *big.Int
	CeilPrice           *big.Int
	MaxExpansionRate    *big.Int
}

// Epoch bounds how much additional synth supply may be minted per window,
// recomputed from the prior window's TWAP and the tier table.
type Epoch struct {
	state   Storage
	source  CumulativePriceSource
	supply  SupplyQuerier
	emitter events.Emitter
}

// New constructs the epoch engine over the provided collaborators.
func New(state Storage, source CumulativePriceSource, supply SupplyQuerier) *Epoch {
	return &Epoch{state: state, source: source, supply: supply}
}

// SetEmitter wires an optional event sink. A nil emitter is tolerated.
func (e *Epoch) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	e.emitter = emitter
}

// Initialize seeds an empty window. Called once during pool construction;
// the zero record gates nothing until ConfigOracle and ConfigEpoch run.
func (e *Epoch) Initialize() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.save(State{PriceCumulativeLast: big.NewInt(0)})
}

// State returns a copy of the persisted window.
func (e *Epoch) State() (State, error) {
	return e.load()
}

// NextEpoch rolls the window over: it samples the synth token's supply and
// the pair's cumulative price, recomputes the supply ceiling for the new
// window and returns the TWAP observed over the window just closed. The very
// first call only seeds the window and reports a zero TWAP.
func (e *Epoch) NextEpoch(synthToken string, now uint64) (*big.Int, error) {
	state, err := e.load()
	if err != nil {
		return nil, err
	}
	if state.PairAddr == "" {
		return nil, ErrNotConfigured
	}
	if now < state.StartTimestamp+state.EpochDuration {
		return nil, ErrEpochNotElapsed
	}
	if e.supply == nil {
		return nil, errNilSupply
	}
	if e.source == nil {
		return nil, errNilSource
	}
	supply, err := e.supply.TotalSupply(synthToken)
	if err != nil {
		return nil, err
	}
	cumulative, err := e.source.CumulativePrice(state.PairAddr, state.BaseIndex)
	if err != nil {
		return nil, err
	}
	twap, err := state.next(supply, cumulative, now)
	if err != nil {
		return nil, err
	}
	if err := e.save(state); err != nil {
		return nil, err
	}
	e.emit(events.EpochAdvanced{Twap: twap.String(), StartTimestamp: state.StartTimestamp})
	return twap, nil
}

// AssertMintAmount rejects a mint that would push the synth supply past the
// window's allowed ceiling. An unconstrained window allows everything.
func (e *Epoch) AssertMintAmount(synthToken string, mintAmount *big.Int, now uint64) error {
	if e == nil || e.supply == nil {
		return errNilSupply
	}
	if mintAmount == nil {
		return errNilAmount
	}
	supply, err := e.supply.TotalSupply(synthToken)
	if err != nil {
		return err
	}
	state, err := e.load()
	if err != nil {
		return err
	}
	allowed := state.allowedSupply(now)
	if allowed == nil {
		return nil
	}
	if new(big.Int).Add(supply, mintAmount).Cmp(allowed) > 0 {
		return ErrMintAmountTooLarge
	}
	return nil
}

// ConfigOracle re-points the window's price source and reseeds the
// observation baseline. The expansion ceiling is left untouched.
func (e *Epoch) ConfigOracle(pairAddr string, baseIndex uint8, now uint64) error {
	if baseIndex > 1 {
		return ErrInvalidBaseIndex
	}
	addr := strings.TrimSpace(pairAddr)
	if addr == "" {
		return errEmptyPair
	}
	state, err := e.load()
	if err != nil {
		return err
	}
	if e.source == nil {
		return errNilSource
	}
	cumulative, err := e.source.CumulativePrice(addr, baseIndex)
	if err != nil {
		return err
	}
	if cumulative == nil {
		return errNilAmount
	}
	state.PairAddr = addr
	state.BaseIndex = baseIndex
	state.StartTimestamp = now
	state.PriceCumulativeLast = new(big.Int).Set(cumulative)
	return e.save(state)
}

// ConfigEpoch replaces the policy knobs. Nil optionals clear the matching
// policy: a nil ceilPrice disables expansion, a nil maxExpansionRate removes
// the rate floor.
func (e *Epoch) ConfigEpoch(duration uint64, ceilPrice, maxExpansionRate *big.Int) error {
	if ceilPrice != nil && ceilPrice.Cmp(unit.Precision()) < 0 {
		return ErrCeilPriceTooLow
	}
	state, err := e.load()
	if err != nil {
		return err
	}
	state.EpochDuration = duration
	state.CeilPrice = copyAmount(ceilPrice)
	state.MaxExpansionRate = copyAmount(maxExpansionRate)
	return e.save(state)
}

// expansionRate returns the per-window rate for the given supply and TWAP,
// or nil when no expansion applies. Supply at or past the top breakpoint
// falls outside every tier, so no further expansion is granted. A configured
// MaxExpansionRate acts as a floor: the returned rate is never below it.
func (s *State) expansionRate(supply, twap *big.Int) *big.Int {
	if s.CeilPrice == nil || twap.Cmp(s.CeilPrice) <= 0 {
		return nil
	}
	idx := -1
	for i, tier := range supplyTiers {
		if supply.Cmp(tier) < 0 {
			idx = i - 1
			break
		}
	}
	if idx < 0 {
		return nil
	}
	rate := big.NewInt(expansionRates[idx])
	if s.MaxExpansionRate != nil && rate.Cmp(s.MaxExpansionRate) < 0 {
		rate = new(big.Int).Set(s.MaxExpansionRate)
	}
	return rate
}

// next recomputes the window in place and returns the TWAP over the window
// just closed. The first call (zero StartTimestamp) only seeds the baseline.
func (s *State) next(tokenSupply, priceCumulative *big.Int, now uint64) (*big.Int, error) {
	if tokenSupply == nil || priceCumulative == nil {
		return nil, errNilAmount
	}
	if s.StartTimestamp == 0 {
		s.StartTimestamp = now
		s.PriceCumulativeLast = new(big.Int).Set(priceCumulative)
		return big.NewInt(0), nil
	}
	if now <= s.StartTimestamp {
		return nil, ErrEpochNotElapsed
	}
	delta := new(big.Int).Sub(priceCumulative, s.PriceCumulativeLast)
	if delta.Sign() < 0 {
		return nil, ErrCumulativePriceRegressed
	}
	elapsed := new(big.Int).SetUint64(now - s.StartTimestamp)
	twap := delta.Quo(delta, elapsed)

	rate := s.expansionRate(tokenSupply, twap)
	if rate == nil {
		rate = big.NewInt(0)
	}
	s.BaseSupply = new(big.Int).Set(tokenSupply)
	s.MaxSupply = unit.MulDivPrecision(tokenSupply, new(big.Int).Add(rate, unit.Precision()))
	s.PriceCumulativeLast = new(big.Int).Set(priceCumulative)
	s.StartTimestamp = now
	return twap, nil
}

// allowedSupply interpolates from BaseSupply toward MaxSupply over the first
// half of the window, then holds flat. Nil means unconstrained.
func (s *State) allowedSupply(now uint64) *big.Int {
	if s.MaxSupply == nil {
		return nil
	}
	var elapsed uint64
	if now > s.StartTimestamp {
		elapsed = now - s.StartTimestamp
	}
	half := s.EpochDuration / 2
	if half == 0 || elapsed >= half {
		return new(big.Int).Set(s.MaxSupply)
	}
	headroom := new(big.Int).Sub(s.MaxSupply, s.BaseSupply)
	grant := unit.MulDiv(headroom, new(big.Int).SetUint64(elapsed), new(big.Int).SetUint64(half))
	return grant.Add(grant, s.BaseSupply)
}

func (e *Epoch) load() (State, error) {
	if e == nil || e.state == nil {
		return State{}, errNilState
	}
	var stored storedState
	ok, err := e.state.KVGet(epochStateKey, &stored)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, ErrNotInitialised
	}
	return stored.toState()
}

func (e *Epoch) save(state State) error {
	stored, err := newStoredState(state)
	if err != nil {
		return err
	}
	return e.state.KVPut(epochStateKey, stored)
}

func (e *Epoch) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func copyAmount(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
