package unit

import "math/big"

// precisionUnits is the single reference precision used for every ratio, fee
// and price in the protocol. A ratio of 1.0 is literally this integer.
const precisionUnits = 1_000_000

// Precision returns the fixed-point scale as a fresh big.Int so callers can
// never mutate the shared constant.
func Precision() *big.Int {
	return big.NewInt(precisionUnits)
}

// Scale converts a whole token count into protocol units (six decimals).
func Scale(whole uint64) *big.Int {
	value := new(big.Int).SetUint64(whole)
	return value.Mul(value, Precision())
}

// MulDiv computes a*b/den with truncating division. Division order matters
// for the fee formulas: truncation always rounds in the protocol's favour.
func MulDiv(a, b, den *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, den)
}

// MulDivPrecision computes a*b/PRECISION, the common one-factor rescale.
func MulDivPrecision(a, b *big.Int) *big.Int {
	return MulDiv(a, b, Precision())
}

// Complement returns PRECISION - rate, the remaining fraction after a
// fixed-point rate has been taken out. Callers must pass rate <= PRECISION.
func Complement(rate *big.Int) *big.Int {
	return new(big.Int).Sub(Precision(), rate)
}
