package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrMintingPaused is returned when the mint kill-switch is engaged.
	ErrMintingPaused = errors.New("pool: minting paused")
	// ErrRedemptionPaused is returned when the redeem kill-switch is engaged.
	ErrRedemptionPaused = errors.New("pool: redemption paused")
	// ErrMintInvalidCollateralAmount is returned when a mint carries no
	// collateral of the configured denomination.
	ErrMintInvalidCollateralAmount = errors.New("pool: no collateral supplied")
	// ErrRedeemEmptyAmount is returned when a redeem presents zero synth.
	ErrRedeemEmptyAmount = errors.New("pool: redeem amount is zero")
	// ErrSlippageReached is returned when an output falls below the caller's
	// stated minimum.
	ErrSlippageReached = errors.New("pool: slippage limit reached")
	// ErrCollectTooEarly is returned when collect runs in the same block as
	// the account's last mint or redeem.
	ErrCollectTooEarly = errors.New("pool: collect in same block as mint or redeem")
	// ErrCollateralRatioRefreshCooldown is returned when a refresh arrives
	// before the cooldown has elapsed.
	ErrCollateralRatioRefreshCooldown = errors.New("pool: collateral ratio refresh cooldown")
	// ErrTokenAlreadySet is returned when a one-shot token address is set twice.
	ErrTokenAlreadySet = errors.New("pool: token address already set")
	// ErrTokenNotSet is returned when an operation needs a token address that
	// was never bound.
	ErrTokenNotSet = errors.New("pool: token address not set")
	// ErrInvalidRate is returned when a fee or ratio falls outside [0, PRECISION].
	ErrInvalidRate = errors.New("pool: rate outside [0, precision]")
	// ErrNotInitialised is returned when the pool record was never constructed.
	ErrNotInitialised = errors.New("pool: state not initialised")
	// ErrAlreadyConstructed is returned when Construct runs twice.
	ErrAlreadyConstructed = errors.New("pool: already constructed")
	// ErrUnknownDeployRequest is returned when a token-deploy completion does
	// not match any outstanding request.
	ErrUnknownDeployRequest = errors.New("pool: unknown token deploy request")

	errNilState           = errors.New("pool: storage not configured")
	errNilAmount          = errors.New("pool: nil amount")
	errNilSharePrice      = errors.New("pool: share price unavailable")
	errCorruptState       = errors.New("pool: stored amount corrupted")
	errAccountingMismatch = errors.New("pool: unclaimed accumulator underflow")
	errNoBankQuerier      = errors.New("pool: bank querier not configured")
	errNoTokenQuerier     = errors.New("pool: token querier not configured")
)

// InvalidSynthInputError reports a redeem attempted with a token other than
// the configured synth.
type InvalidSynthInputError struct {
	Want string
	Send string
}

func (e *InvalidSynthInputError) Error() string {
	return fmt.Sprintf("pool: invalid synth input: want %s, sent %s", e.Want, e.Send)
}
