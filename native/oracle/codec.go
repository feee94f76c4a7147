package oracle

import (
	"fmt"
	"math/big"
)

// storedState keeps big amounts as decimal strings so the RLP encoding stays
// stable across releases.
type storedState struct {
	PairAddr            string
	BaseIndex           uint8
	PriceCumulativeLast string
	HasTwap             bool
	Twap                string
	LastUpdate          uint64
	TwapPeriod          uint64
}

func newStoredState(state State) (storedState, error) {
	if state.PriceCumulativeLast == nil {
		return storedState{}, errNilAmount
	}
	stored := storedState{
		PairAddr:            state.PairAddr,
		BaseIndex:           state.BaseIndex,
		PriceCumulativeLast: state.PriceCumulativeLast.String(),
		LastUpdate:          state.LastUpdate,
		TwapPeriod:          state.TwapPeriod,
	}
	if state.Twap != nil {
		stored.HasTwap = true
		stored.Twap = state.Twap.String()
	}
	return stored, nil
}

func (s storedState) toState() (State, error) {
	cumulative, err := parseStoredAmount(s.PriceCumulativeLast)
	if err != nil {
		return State{}, err
	}
	state := State{
		PairAddr:            s.PairAddr,
		BaseIndex:           s.BaseIndex,
		PriceCumulativeLast: cumulative,
		LastUpdate:          s.LastUpdate,
		TwapPeriod:          s.TwapPeriod,
	}
	if s.HasTwap {
		twap, err := parseStoredAmount(s.Twap)
		if err != nil {
			return State{}, err
		}
		state.Twap = twap
	}
	return state, nil
}

func parseStoredAmount(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errCorruptState, raw)
	}
	return value, nil
}
