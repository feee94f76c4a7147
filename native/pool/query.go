package pool

import (
	"errors"
	"math/big"

	"synthpool/native/oracle"
)

// PoolInfo is the public snapshot of the pool record. CollateralBalance is
// the bank balance net of the protocol fee and the collateral still owed to
// users. The oracle states are nil until the matching Config call runs.
type PoolInfo struct {
	Owner           string
	CollateralDenom string
	Synth           string
	Share           string

	CollateralRatio     *big.Int
	MinCollateralRatio  *big.Int
	CollateralRatioStep *big.Int
	PriceBand           *big.Int
	MintingFee          *big.Int
	RedemptionFee       *big.Int

	LastRefreshCollateralRatio     uint64
	RefreshCollateralRatioCooldown uint64

	CollateralBalance        *big.Int
	TotalFee                 *big.Int
	TotalUnclaimedSynth      *big.Int
	TotalUnclaimedCollateral *big.Int
	TotalUnclaimedShare      *big.Int

	SynthOracle *oracle.State
	ShareOracle *oracle.State

	MintPaused   bool
	RedeemPaused bool
}

// PriceInfo carries the two spot prices and, when available, the TWAPs.
// A nil TWAP means that oracle has not produced one yet.
type PriceInfo struct {
	SynthSpot *big.Int
	ShareSpot *big.Int

	SynthTwap          *big.Int
	SynthTwapUpdatedAt uint64
	ShareTwap          *big.Int
	ShareTwapUpdatedAt uint64
}

// PoolInfo assembles the public pool snapshot.
func (e *Engine) PoolInfo() (*PoolInfo, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	owner, err := e.owners.Owner()
	if err != nil {
		return nil, err
	}
	if e.bank == nil {
		return nil, errNoBankQuerier
	}
	bankBalance, err := e.bank.Balance(e.poolAddr, cfg.CollateralDenom)
	if err != nil {
		return nil, err
	}
	collateral := new(big.Int).Sub(bankBalance, cfg.TotalFee)
	collateral.Sub(collateral, cfg.TotalUnclaimedCollateral)
	synthState, err := oracleSnapshot(e.synthOracle)
	if err != nil {
		return nil, err
	}
	shareState, err := oracleSnapshot(e.shareOracle)
	if err != nil {
		return nil, err
	}

	return &PoolInfo{
		Owner:                          owner,
		CollateralDenom:                cfg.CollateralDenom,
		Synth:                          cfg.Synth,
		Share:                          cfg.Share,
		CollateralRatio:                cfg.CollateralRatio,
		MinCollateralRatio:             cfg.MinCollateralRatio,
		CollateralRatioStep:            cfg.CollateralRatioStep,
		PriceBand:                      cfg.PriceBand,
		MintingFee:                     cfg.MintingFee,
		RedemptionFee:                  cfg.RedemptionFee,
		LastRefreshCollateralRatio:     cfg.LastRefreshCollateralRatio,
		RefreshCollateralRatioCooldown: cfg.RefreshCollateralRatioCooldown,
		CollateralBalance:              collateral,
		TotalFee:                       cfg.TotalFee,
		TotalUnclaimedSynth:            cfg.TotalUnclaimedSynth,
		TotalUnclaimedCollateral:       cfg.TotalUnclaimedCollateral,
		TotalUnclaimedShare:            cfg.TotalUnclaimedShare,
		SynthOracle:                    synthState,
		ShareOracle:                    shareState,
		MintPaused:                     cfg.MintPaused,
		RedeemPaused:                   cfg.RedeemPaused,
	}, nil
}

// oracleSnapshot copies the oracle record, mapping "never configured" to nil.
func oracleSnapshot(o *oracle.PairOracle) (*oracle.State, error) {
	state, err := o.State()
	if err != nil {
		if errors.Is(err, oracle.ErrNotConfigured) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// UserInfo returns the account's pending balances, zeroed for accounts that
// never interacted.
func (e *Engine) UserInfo(addr string) (UserInfo, error) {
	return e.loadUser(addr)
}

// QueryCalcMint prices a hypothetical mint at the current configuration.
func (e *Engine) QueryCalcMint(collateralAmount *big.Int) (MintResult, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return MintResult{}, err
	}
	return cfg.CalcMint(collateralAmount)
}

// QueryCalcRedeem prices a hypothetical redeem at the current share spot.
func (e *Engine) QueryCalcRedeem(synthAmount *big.Int) (RedeemResult, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return RedeemResult{}, err
	}
	sharePrice, err := e.shareOracle.SpotPrice()
	if err != nil {
		return RedeemResult{}, err
	}
	return cfg.CalcRedeem(synthAmount, sharePrice)
}

// Prices reads both spot prices and attaches the TWAPs when they exist. A
// missing TWAP is reported as nil rather than an error so callers can always
// see the spots.
func (e *Engine) Prices() (*PriceInfo, error) {
	synthSpot, err := e.synthOracle.SpotPrice()
	if err != nil {
		return nil, err
	}
	shareSpot, err := e.shareOracle.SpotPrice()
	if err != nil {
		return nil, err
	}
	info := &PriceInfo{SynthSpot: synthSpot, ShareSpot: shareSpot}
	if twap, updatedAt, err := e.synthOracle.TWAP(); err == nil {
		info.SynthTwap = twap
		info.SynthTwapUpdatedAt = updatedAt
	} else if !errors.Is(err, oracle.ErrPriceUnavailableOrOutdated) {
		return nil, err
	}
	if twap, updatedAt, err := e.shareOracle.TWAP(); err == nil {
		info.ShareTwap = twap
		info.ShareTwapUpdatedAt = updatedAt
	} else if !errors.Is(err, oracle.ErrPriceUnavailableOrOutdated) {
		return nil, err
	}
	return info, nil
}
