package pool

import (
	"math/big"

	"synthpool/native/unit"
)

// Default policy parameters applied at construction, in protocol units.
const (
	defaultRefreshCooldown     = 600
	defaultCollateralRatioStep = 2_500
	defaultPriceBand           = 5_000
	defaultMintingFee          = 3_000
	defaultRedemptionFee       = 5_000
)

// PoolConfig is the durable pool record: token bindings, the collateral
// ratio and its movement policy, the fee schedule, pause flags and the
// protocol-wide unclaimed accumulators.
type PoolConfig struct {
	CollateralDenom string
	Synth           string
	Share           string

	CollateralRatio     *big.Int
	MinCollateralRatio  *big.Int
	CollateralRatioStep *big.Int
	PriceBand           *big.Int

	LastRefreshCollateralRatio     uint64
	RefreshCollateralRatioCooldown uint64

	MintingFee    *big.Int
	RedemptionFee *big.Int

	TotalFee                 *big.Int
	TotalUnclaimedSynth      *big.Int
	TotalUnclaimedCollateral *big.Int
	TotalUnclaimedShare      *big.Int

	MintPaused   bool
	RedeemPaused bool
}

// DefaultPoolConfig returns a fully collateralized pool with the standard
// fee schedule. The token addresses stay empty until the deploy callbacks
// bind them.
func DefaultPoolConfig(collateralDenom string) PoolConfig {
	return PoolConfig{
		CollateralDenom:                collateralDenom,
		CollateralRatio:                unit.Precision(),
		MinCollateralRatio:             unit.Precision(),
		CollateralRatioStep:            big.NewInt(defaultCollateralRatioStep),
		PriceBand:                      big.NewInt(defaultPriceBand),
		RefreshCollateralRatioCooldown: defaultRefreshCooldown,
		MintingFee:                     big.NewInt(defaultMintingFee),
		RedemptionFee:                  big.NewInt(defaultRedemptionFee),
		TotalFee:                       big.NewInt(0),
		TotalUnclaimedSynth:            big.NewInt(0),
		TotalUnclaimedCollateral:       big.NewInt(0),
		TotalUnclaimedShare:            big.NewInt(0),
	}
}

type storedPoolConfig struct {
	CollateralDenom string
	Synth           string
	Share           string

	CollateralRatio     string
	MinCollateralRatio  string
	CollateralRatioStep string
	PriceBand           string

	LastRefreshCollateralRatio     uint64
	RefreshCollateralRatioCooldown uint64

	MintingFee    string
	RedemptionFee string

	TotalFee                 string
	TotalUnclaimedSynth      string
	TotalUnclaimedCollateral string
	TotalUnclaimedShare      string

	MintPaused   bool
	RedeemPaused bool
}

func newStoredPoolConfig(cfg PoolConfig) (storedPoolConfig, error) {
	amounts := []*big.Int{
		cfg.CollateralRatio, cfg.MinCollateralRatio, cfg.CollateralRatioStep,
		cfg.PriceBand, cfg.MintingFee, cfg.RedemptionFee, cfg.TotalFee,
		cfg.TotalUnclaimedSynth, cfg.TotalUnclaimedCollateral, cfg.TotalUnclaimedShare,
	}
	for _, amount := range amounts {
		if amount == nil {
			return storedPoolConfig{}, errNilAmount
		}
	}
	return storedPoolConfig{
		CollateralDenom:                cfg.CollateralDenom,
		Synth:                          cfg.Synth,
		Share:                          cfg.Share,
		CollateralRatio:                cfg.CollateralRatio.String(),
		MinCollateralRatio:             cfg.MinCollateralRatio.String(),
		CollateralRatioStep:            cfg.CollateralRatioStep.String(),
		PriceBand:                      cfg.PriceBand.String(),
		LastRefreshCollateralRatio:     cfg.LastRefreshCollateralRatio,
		RefreshCollateralRatioCooldown: cfg.RefreshCollateralRatioCooldown,
		MintingFee:                     cfg.MintingFee.String(),
		RedemptionFee:                  cfg.RedemptionFee.String(),
		TotalFee:                       cfg.TotalFee.String(),
		TotalUnclaimedSynth:            cfg.TotalUnclaimedSynth.String(),
		TotalUnclaimedCollateral:       cfg.TotalUnclaimedCollateral.String(),
		TotalUnclaimedShare:            cfg.TotalUnclaimedShare.String(),
		MintPaused:                     cfg.MintPaused,
		RedeemPaused:                   cfg.RedeemPaused,
	}, nil
}

func (s storedPoolConfig) toConfig() (PoolConfig, error) {
	cfg := PoolConfig{
		CollateralDenom:                s.CollateralDenom,
		Synth:                          s.Synth,
		Share:                          s.Share,
		LastRefreshCollateralRatio:     s.LastRefreshCollateralRatio,
		RefreshCollateralRatioCooldown: s.RefreshCollateralRatioCooldown,
		MintPaused:                     s.MintPaused,
		RedeemPaused:                   s.RedeemPaused,
	}
	fields := []struct {
		raw string
		dst **big.Int
	}{
		{s.CollateralRatio, &cfg.CollateralRatio},
		{s.MinCollateralRatio, &cfg.MinCollateralRatio},
		{s.CollateralRatioStep, &cfg.CollateralRatioStep},
		{s.PriceBand, &cfg.PriceBand},
		{s.MintingFee, &cfg.MintingFee},
		{s.RedemptionFee, &cfg.RedemptionFee},
		{s.TotalFee, &cfg.TotalFee},
		{s.TotalUnclaimedSynth, &cfg.TotalUnclaimedSynth},
		{s.TotalUnclaimedCollateral, &cfg.TotalUnclaimedCollateral},
		{s.TotalUnclaimedShare, &cfg.TotalUnclaimedShare},
	}
	for _, field := range fields {
		value, err := parseStoredAmount(field.raw)
		if err != nil {
			return PoolConfig{}, err
		}
		*field.dst = value
	}
	return cfg, nil
}
