package pool

import (
	"math/big"

	"synthpool/native/unit"
)

// MintResult is the priced breakdown of a mint: the uncollateralized slice
// routed to buy-and-burn share, the synth owed to the user and the fee kept
// by the protocol.
type MintResult struct {
	BuyShareValue *big.Int
	SynthOut      *big.Int
	Fee           *big.Int
}

// RedeemResult is the priced breakdown of a redeem: collateral and share
// owed to the user plus the fee, denominated in synth.
type RedeemResult struct {
	CollateralOut *big.Int
	ShareOut      *big.Int
	Fee           *big.Int
}

// CalcMint prices a mint at the current collateral ratio. The synth output
// is taken off the full collateral input; only the fee and the share-buy
// slice depend on the ratio.
func (c *PoolConfig) CalcMint(collateralAmount *big.Int) (MintResult, error) {
	if collateralAmount == nil {
		return MintResult{}, errNilAmount
	}
	buyShareValue := unit.MulDivPrecision(collateralAmount, unit.Complement(c.CollateralRatio))
	synthOut := unit.MulDivPrecision(collateralAmount, unit.Complement(c.MintingFee))
	fee := unit.MulDivPrecision(
		unit.MulDivPrecision(collateralAmount, c.CollateralRatio),
		c.MintingFee,
	)
	return MintResult{BuyShareValue: buyShareValue, SynthOut: synthOut, Fee: fee}, nil
}

// CalcRedeem prices a redeem of synthAmount at the given share price. The
// collateralized slice comes back as collateral, the remainder as share
// valued at sharePrice.
func (c *PoolConfig) CalcRedeem(synthAmount, sharePrice *big.Int) (RedeemResult, error) {
	if synthAmount == nil {
		return RedeemResult{}, errNilAmount
	}
	if sharePrice == nil || sharePrice.Sign() <= 0 {
		return RedeemResult{}, errNilSharePrice
	}
	afterFee := unit.Complement(c.RedemptionFee)

	collateralOut := unit.MulDivPrecision(
		unit.MulDivPrecision(synthAmount, c.CollateralRatio),
		afterFee,
	)
	fee := unit.MulDivPrecision(synthAmount, c.RedemptionFee)

	shareOut := new(big.Int).Mul(synthAmount, afterFee)
	shareOut.Mul(shareOut, unit.Complement(c.CollateralRatio))
	shareOut.Quo(shareOut, sharePrice)
	shareOut.Quo(shareOut, unit.Precision())

	return RedeemResult{CollateralOut: collateralOut, ShareOut: shareOut, Fee: fee}, nil
}
