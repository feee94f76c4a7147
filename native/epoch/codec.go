package epoch

import (
	"fmt"
	"math/big"
)

// storedState keeps big amounts as decimal strings and optionals behind Has
// flags so the RLP encoding stays stable across releases.
type storedState struct {
	PairAddr            string
	BaseIndex           uint8
	PriceCumulativeLast string
	StartTimestamp      uint64
	EpochDuration       uint64
	HasBaseSupply       bool
	BaseSupply          string
	HasMaxSupply        bool
	MaxSupply           string
	HasCeilPrice        bool
	CeilPrice           string
	HasMaxExpansionRate bool
	MaxExpansionRate    string
}

func newStoredState(state State) (storedState, error) {
	if state.PriceCumulativeLast == nil {
		return storedState{}, errNilAmount
	}
	stored := storedState{
		PairAddr:            state.PairAddr,
		BaseIndex:           state.BaseIndex,
		PriceCumulativeLast: state.PriceCumulativeLast.String(),
		StartTimestamp:      state.StartTimestamp,
		EpochDuration:       state.EpochDuration,
	}
	if state.BaseSupply != nil {
		stored.HasBaseSupply = true
		stored.BaseSupply = state.BaseSupply.String()
	}
	if state.MaxSupply != nil {
		stored.HasMaxSupply = true
		stored.MaxSupply = state.MaxSupply.String()
	}
	if state.CeilPrice != nil {
		stored.HasCeilPrice = true
		stored.CeilPrice = state.CeilPrice.String()
	}
	if state.MaxExpansionRate != nil {
		stored.HasMaxExpansionRate = true
		stored.MaxExpansionRate = state.MaxExpansionRate.String()
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
		StartTimestamp:      s.StartTimestamp,
		EpochDuration:       s.EpochDuration,
	}
	if s.HasBaseSupply {
		if state.BaseSupply, err = parseStoredAmount(s.BaseSupply); err != nil {
			return State{}, err
		}
	}
	if s.HasMaxSupply {
		if state.MaxSupply, err = parseStoredAmount(s.MaxSupply); err != nil {
			return State{}, err
		}
	}
	if s.HasCeilPrice {
		if state.CeilPrice, err = parseStoredAmount(s.CeilPrice); err != nil {
			return State{}, err
		}
	}
	if s.HasMaxExpansionRate {
		if state.MaxExpansionRate, err = parseStoredAmount(s.MaxExpansionRate); err != nil {
			return State{}, err
		}
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
