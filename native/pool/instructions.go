package pool

import "math/big"

// Instruction is an outbound effect the host executes after the originating
// call commits. Instructions never mutate pool state themselves.
type Instruction interface {
	InstructionType() string
}

// SwapExactIn swaps collateral for the ask token through the external
// router, crediting the recipient.
type SwapExactIn struct {
	Router     string
	OfferDenom string
	AskToken   string
	Amount     *big.Int
	Recipient  string
}

func (SwapExactIn) InstructionType() string { return "swap_exact_in" }

// BurnPoolShares asks the host to call back into BurnShare once the
// preceding swap has settled, so the burn covers the swapped-in shares.
type BurnPoolShares struct{}

func (BurnPoolShares) InstructionType() string { return "burn_pool_shares" }

// TokenMint mints amount of an external token to the recipient.
type TokenMint struct {
	Token     string
	Recipient string
	Amount    *big.Int
}

func (TokenMint) InstructionType() string { return "token_mint" }

// TokenBurn burns amount of an external token from the pool's own balance.
type TokenBurn struct {
	Token  string
	Amount *big.Int
}

func (TokenBurn) InstructionType() string { return "token_burn" }

// BankSend transfers native collateral to the recipient.
type BankSend struct {
	Recipient string
	Denom     string
	Amount    *big.Int
}

func (BankSend) InstructionType() string { return "bank_send" }
