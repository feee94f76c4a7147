package events

import "math/big"

const (
	// TypePoolMinted is emitted when collateral is exchanged for pending synth.
	TypePoolMinted = "pool.minted"
	// TypePoolRedeemed is emitted when synth is exchanged for pending collateral and share.
	TypePoolRedeemed = "pool.redeemed"
	// TypePoolCollected is emitted when a user claims their pending balances.
	TypePoolCollected = "pool.collected"
	// TypeCollateralRatioRefreshed is emitted after a successful ratio nudge.
	TypeCollateralRatioRefreshed = "pool.collateral_ratio_refreshed"
	// TypeShareBurned is emitted when the pool burns its whole share balance.
	TypeShareBurned = "pool.share_burned"
)

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// PoolMinted mirrors the attribute set of the mint response.
type PoolMinted struct {
	Account       string
	Input         *big.Int
	Output        *big.Int
	Fee           *big.Int
	BuyShareValue *big.Int
}

func (PoolMinted) EventType() string { return TypePoolMinted }

func (e PoolMinted) Attributes() map[string]string {
	return map[string]string{
		"account":       e.Account,
		"input":         amountString(e.Input),
		"output":        amountString(e.Output),
		"fee":           amountString(e.Fee),
		"buyShareValue": amountString(e.BuyShareValue),
	}
}

// PoolRedeemed mirrors the attribute set of the redeem response.
type PoolRedeemed struct {
	Account       string
	Input         *big.Int
	ShareOut      *big.Int
	CollateralOut *big.Int
	Fee           *big.Int
}

func (PoolRedeemed) EventType() string { return TypePoolRedeemed }

func (e PoolRedeemed) Attributes() map[string]string {
	return map[string]string{
		"account":       e.Account,
		"input":         amountString(e.Input),
		"shareOut":      amountString(e.ShareOut),
		"collateralOut": amountString(e.CollateralOut),
		"fee":           amountString(e.Fee),
	}
}

// PoolCollected reports the pending balances released to the user.
type PoolCollected struct {
	Account          string
	CollateralAmount *big.Int
	SynthAmount      *big.Int
	ShareAmount      *big.Int
}

func (PoolCollected) EventType() string { return TypePoolCollected }

func (e PoolCollected) Attributes() map[string]string {
	return map[string]string{
		"account":          e.Account,
		"collateralAmount": amountString(e.CollateralAmount),
		"synthAmount":      amountString(e.SynthAmount),
		"shareAmount":      amountString(e.ShareAmount),
	}
}

// CollateralRatioRefreshed reports the post-nudge ratio.
type CollateralRatioRefreshed struct {
	CollateralRatio *big.Int
	Timestamp       uint64
}

func (CollateralRatioRefreshed) EventType() string { return TypeCollateralRatioRefreshed }

func (e CollateralRatioRefreshed) Attributes() map[string]string {
	return map[string]string{
		"collateralRatio": amountString(e.CollateralRatio),
		"timestamp":       uintString(e.Timestamp),
	}
}

// ShareBurned reports a whole-balance share burn instruction.
type ShareBurned struct {
	BurnAmount *big.Int
}

func (ShareBurned) EventType() string { return TypeShareBurned }

func (e ShareBurned) Attributes() map[string]string {
	return map[string]string{"burnAmount": amountString(e.BurnAmount)}
}
