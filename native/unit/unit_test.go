package unit

import (
	"math/big"
	"testing"
)

func TestScale(t *testing.T) {
	if got := Scale(0); got.Sign() != 0 {
		t.Fatalf("Scale(0) = %s, want 0", got)
	}
	if got := Scale(500_000); got.Cmp(big.NewInt(500_000_000_000)) != 0 {
		t.Fatalf("Scale(500000) = %s, want 500000000000", got)
	}
}

func TestMulDivTruncates(t *testing.T) {
	// 7*3/2 = 10.5, integer math keeps 10.
	got := MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2))
	if got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("MulDiv(7,3,2) = %s, want 10", got)
	}
}

func TestMulDivPrecision(t *testing.T) {
	// 1.5 units at a 0.5 ratio is 0.75 units.
	got := MulDivPrecision(big.NewInt(1_500_000), big.NewInt(500_000))
	if got.Cmp(big.NewInt(750_000)) != 0 {
		t.Fatalf("MulDivPrecision = %s, want 750000", got)
	}
}

func TestComplement(t *testing.T) {
	got := Complement(big.NewInt(3_000))
	if got.Cmp(big.NewInt(997_000)) != 0 {
		t.Fatalf("Complement(3000) = %s, want 997000", got)
	}
	if Precision().Cmp(Complement(big.NewInt(0))) != 0 {
		t.Fatalf("Complement(0) should equal the precision scale")
	}
}

func TestPrecisionIsCopied(t *testing.T) {
	p := Precision()
	p.SetInt64(1)
	if Precision().Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("mutating a returned precision leaked into the package")
	}
}
