package oracle

import (
	"errors"
	"math/big"
	"strings"

	"synthpool/core/events"
	"synthpool/native/unit"
)

// DefaultTwapPeriod is the minimum spacing between TWAP updates, in seconds,
// when a configuration does not override it.
const DefaultTwapPeriod = 600

var (
	// ErrTwapPeriodNotElapsed is returned when an update arrives before the
	// configured period has passed since the previous one.
	ErrTwapPeriodNotElapsed = errors.New("oracle: twap period not elapsed")
	// ErrPriceUnavailableOrOutdated is returned when no TWAP exists yet or
	// the oracle has never been configured.
	ErrPriceUnavailableOrOutdated = errors.New("oracle: price unavailable or outdated")
	// ErrNotConfigured is returned by mutating calls before Config ran.
	ErrNotConfigured = errors.New("oracle: pair not configured")
	// ErrInvalidBaseIndex is returned when the base token index is not 0 or 1.
	ErrInvalidBaseIndex = errors.New("oracle: base index must be 0 or 1")
	// ErrEmptyPairReserve is returned when the pair reports a zero base reserve.
	ErrEmptyPairReserve = errors.New("oracle: pair base reserve is zero")
	// ErrCumulativePriceRegressed is returned when the pair's cumulative price
	// moved backwards between observations.
	ErrCumulativePriceRegressed = errors.New("oracle: cumulative price regressed")

	errNilState     = errors.New("oracle: storage not configured")
	errNilSource    = errors.New("oracle: pair source not configured")
	errEmptyPair    = errors.New("oracle: pair address required")
	errNilAmount    = errors.New("oracle: pair source returned nil amount")
	errCorruptState = errors.New("oracle: stored amount corrupted")
)

// Storage abstracts the subset of state functionality the oracle needs.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// PairSource reads cumulative prices and reserves from an external AMM pair.
type PairSource interface {
	CumulativePrice(pairAddr string, baseIndex uint8) (*big.Int, error)
	Reserves(pairAddr string) ([2]*big.Int, error)
}

// State is the persisted oracle record. Twap stays nil until the first
// successful update after configuration.
type State struct {
	PairAddr            string
	BaseIndex           uint8
	PriceCumulativeLast *big.Int
	Twap                *big.Int
	LastUpdate          uint64
	TwapPeriod          uint64
}

// PairOracle tracks a single AMM pair and maintains its time-weighted
// average price of the base token, quoted in the counter token.
type PairOracle struct {
	state   Storage
	source  PairSource
	name    string
	key     []byte
	emitter events.Emitter
}

// NewPairOracle constructs an oracle instance. The name keys the persisted
// state, so two instances with distinct names never collide.
func NewPairOracle(state Storage, source PairSource, name string) *PairOracle {
	return &PairOracle{
		state:  state,
		source: source,
		name:   name,
		key:    oracleStateKey(name),
	}
}

// SetEmitter wires an optional event sink. A nil emitter is tolerated.
func (o *PairOracle) SetEmitter(emitter events.Emitter) {
	if o == nil {
		return
	}
	o.emitter = emitter
}

// Name returns the instance name used to key this oracle's state.
func (o *PairOracle) Name() string {
	if o == nil {
		return ""
	}
	return o.name
}

// Config points the oracle at a pair and resets its observation window. The
// cumulative counter is sampled immediately so the next update measures only
// time spent under the new configuration. A zero twapPeriod selects the
// default.
func (o *PairOracle) Config(pairAddr string, baseIndex uint8, twapPeriod uint64, now uint64) error {
	if o == nil || o.state == nil {
		return errNilState
	}
	if o.source == nil {
		return errNilSource
	}
	if baseIndex > 1 {
		return ErrInvalidBaseIndex
	}
	addr := strings.TrimSpace(pairAddr)
	if addr == "" {
		return errEmptyPair
	}
	if twapPeriod == 0 {
		twapPeriod = DefaultTwapPeriod
	}
	cumulative, err := o.source.CumulativePrice(addr, baseIndex)
	if err != nil {
		return err
	}
	if cumulative == nil {
		return errNilAmount
	}
	state := State{
		PairAddr:            addr,
		BaseIndex:           baseIndex,
		PriceCumulativeLast: new(big.Int).Set(cumulative),
		LastUpdate:          now,
		TwapPeriod:          twapPeriod,
	}
	if err := o.save(state); err != nil {
		return err
	}
	o.emit(events.OracleConfigured{
		Oracle:     o.name,
		PairAddr:   addr,
		BaseIndex:  baseIndex,
		TwapPeriod: twapPeriod,
	})
	return nil
}

// UpdateTWAP recomputes the average price over the window since the last
// update. It fails with ErrTwapPeriodNotElapsed until the configured period
// has passed; callers treat that as a skip, not a fault.
func (o *PairOracle) UpdateTWAP(now uint64) (State, error) {
	state, err := o.load()
	if err != nil {
		return State{}, err
	}
	if now < state.LastUpdate+state.TwapPeriod || now == state.LastUpdate {
		return State{}, ErrTwapPeriodNotElapsed
	}
	cumulative, err := o.source.CumulativePrice(state.PairAddr, state.BaseIndex)
	if err != nil {
		return State{}, err
	}
	if cumulative == nil {
		return State{}, errNilAmount
	}
	delta := new(big.Int).Sub(cumulative, state.PriceCumulativeLast)
	if delta.Sign() < 0 {
		return State{}, ErrCumulativePriceRegressed
	}
	elapsed := new(big.Int).SetUint64(now - state.LastUpdate)
	state.Twap = delta.Quo(delta, elapsed)
	state.PriceCumulativeLast = new(big.Int).Set(cumulative)
	state.LastUpdate = now
	if err := o.save(state); err != nil {
		return State{}, err
	}
	o.emit(events.OracleUpdated{
		Oracle:     o.name,
		Twap:       state.Twap.String(),
		LastUpdate: now,
	})
	return state, nil
}

// SpotPrice derives the instantaneous base-token price from the current pair
// reserves, scaled to protocol precision.
func (o *PairOracle) SpotPrice() (*big.Int, error) {
	state, err := o.load()
	if err != nil {
		return nil, err
	}
	if o.source == nil {
		return nil, errNilSource
	}
	reserves, err := o.source.Reserves(state.PairAddr)
	if err != nil {
		return nil, err
	}
	base := reserves[state.BaseIndex]
	quote := reserves[(state.BaseIndex+1)%2]
	if base == nil || quote == nil {
		return nil, errNilAmount
	}
	if base.Sign() == 0 {
		return nil, ErrEmptyPairReserve
	}
	return unit.MulDiv(quote, unit.Precision(), base), nil
}

// TWAP returns the last computed average price and its update timestamp. It
// fails with ErrPriceUnavailableOrOutdated until the first update succeeds.
func (o *PairOracle) TWAP() (*big.Int, uint64, error) {
	state, err := o.load()
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, 0, ErrPriceUnavailableOrOutdated
		}
		return nil, 0, err
	}
	if state.Twap == nil {
		return nil, 0, ErrPriceUnavailableOrOutdated
	}
	return new(big.Int).Set(state.Twap), state.LastUpdate, nil
}

// State returns a copy of the persisted oracle record.
func (o *PairOracle) State() (State, error) {
	return o.load()
}

func (o *PairOracle) load() (State, error) {
	if o == nil || o.state == nil {
		return State{}, errNilState
	}
	var stored storedState
	ok, err := o.state.KVGet(o.key, &stored)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, ErrNotConfigured
	}
	return stored.toState()
}

func (o *PairOracle) save(state State) error {
	stored, err := newStoredState(state)
	if err != nil {
		return err
	}
	return o.state.KVPut(o.key, stored)
}

func (o *PairOracle) emit(event events.Event) {
	if o == nil || o.emitter == nil {
		return
	}
	o.emitter.Emit(event)
}
