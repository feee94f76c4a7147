package pool

import (
	"math/big"
	"strings"

	"synthpool/core/events"
	"synthpool/native/epoch"
	"synthpool/native/oracle"
	"synthpool/native/ownable"
	"synthpool/native/unit"
)

// Storage abstracts the subset of state functionality the pool needs.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// BankQuerier reads native balances held by an account.
type BankQuerier interface {
	Balance(addr, denom string) (*big.Int, error)
}

// TokenQuerier reads external fungible-token balances.
type TokenQuerier interface {
	Balance(token, account string) (*big.Int, error)
}

// Coin is a native amount attached to a call.
type Coin struct {
	Denom  string
	Amount *big.Int
}

// MintReceipt is the committed outcome of a mint plus the outbound
// instructions the host must execute afterwards.
type MintReceipt struct {
	Input        *big.Int
	Result       MintResult
	Instructions []Instruction
}

// RedeemReceipt is the committed outcome of a redeem. Outputs stay pending
// until the user collects, so there are no instructions.
type RedeemReceipt struct {
	Input  *big.Int
	Result RedeemResult
}

// CollectReceipt reports the released balances and the instructions paying
// them out.
type CollectReceipt struct {
	Synth        *big.Int
	Share        *big.Int
	Collateral   *big.Int
	Instructions []Instruction
}

// Engine orchestrates mint, redeem, collect and the collateral-ratio
// refresh against the durable store, delegating pricing to the two oracles
// and supply policy to the epoch.
type Engine struct {
	state       Storage
	owners      *ownable.Registry
	synthOracle *oracle.PairOracle
	shareOracle *oracle.PairOracle
	epoch       *epoch.Epoch

	bank   BankQuerier
	tokens TokenQuerier

	poolAddr   string
	routerAddr string

	emitter events.Emitter
}

// NewEngine constructs the pool engine over its collaborators.
func NewEngine(state Storage, owners *ownable.Registry, synthOracle, shareOracle *oracle.PairOracle, ep *epoch.Epoch) *Engine {
	return &Engine{
		state:       state,
		owners:      owners,
		synthOracle: synthOracle,
		shareOracle: shareOracle,
		epoch:       ep,
	}
}

// SetEmitter wires an optional event sink. A nil emitter is tolerated.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	e.emitter = emitter
}

// SetBankQuerier wires the native-balance reader used by PoolInfo.
func (e *Engine) SetBankQuerier(bank BankQuerier) {
	if e == nil {
		return
	}
	e.bank = bank
}

// SetTokenQuerier wires the token-balance reader used by BurnShare.
func (e *Engine) SetTokenQuerier(tokens TokenQuerier) {
	if e == nil {
		return
	}
	e.tokens = tokens
}

// SetAddresses records the pool's own account and the external swap router.
func (e *Engine) SetAddresses(poolAddr, routerAddr string) {
	if e == nil {
		return
	}
	e.poolAddr = strings.TrimSpace(poolAddr)
	e.routerAddr = strings.TrimSpace(routerAddr)
}

// Mint exchanges attached collateral for pending synth. The uncollateralized
// slice of the input is routed to a share buy-and-burn via the returned
// instructions; the synth itself stays pending until Collect.
func (e *Engine) Mint(caller string, funds []Coin, minSynthOut *big.Int, height, now uint64) (*MintReceipt, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.MintPaused {
		return nil, ErrMintingPaused
	}
	collateral := amountOf(funds, cfg.CollateralDenom)
	if collateral.Sign() <= 0 {
		return nil, ErrMintInvalidCollateralAmount
	}
	result, err := cfg.CalcMint(collateral)
	if err != nil {
		return nil, err
	}
	if minSynthOut != nil && result.SynthOut.Cmp(minSynthOut) < 0 {
		return nil, ErrSlippageReached
	}
	// The epoch cap is checked against the would-be output before anything
	// commits, so a rejected mint leaves no trace.
	if err := e.epoch.AssertMintAmount(cfg.Synth, result.SynthOut, now); err != nil {
		return nil, err
	}

	user, err := e.loadUser(caller)
	if err != nil {
		return nil, err
	}
	user.SynthBalance.Add(user.SynthBalance, result.SynthOut)
	user.LastActionBlock = height
	cfg.TotalUnclaimedSynth.Add(cfg.TotalUnclaimedSynth, result.SynthOut)
	cfg.TotalFee.Add(cfg.TotalFee, result.Fee)
	if err := e.saveUser(caller, user); err != nil {
		return nil, err
	}
	if err := e.saveConfig(cfg); err != nil {
		return nil, err
	}

	receipt := &MintReceipt{Input: collateral, Result: result}
	if result.BuyShareValue.Sign() > 0 {
		receipt.Instructions = []Instruction{
			SwapExactIn{
				Router:     e.routerAddr,
				OfferDenom: cfg.CollateralDenom,
				AskToken:   cfg.Share,
				Amount:     new(big.Int).Set(result.BuyShareValue),
				Recipient:  e.poolAddr,
			},
			BurnPoolShares{},
		}
	}
	e.emit(events.PoolMinted{
		Account:       caller,
		Input:         collateral,
		Output:        result.SynthOut,
		Fee:           result.Fee,
		BuyShareValue: result.BuyShareValue,
	})
	return receipt, nil
}

// Redeem exchanges synth for pending collateral and share, priced at the
// share token's spot price. Outputs are claimable via Collect.
func (e *Engine) Redeem(caller, token string, amount, minCollateralOut, minShareOut *big.Int, height uint64) (*RedeemReceipt, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.RedeemPaused {
		return nil, ErrRedemptionPaused
	}
	if strings.TrimSpace(token) != cfg.Synth || cfg.Synth == "" {
		return nil, &InvalidSynthInputError{Want: cfg.Synth, Send: token}
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrRedeemEmptyAmount
	}
	sharePrice, err := e.shareOracle.SpotPrice()
	if err != nil {
		return nil, err
	}
	result, err := cfg.CalcRedeem(amount, sharePrice)
	if err != nil {
		return nil, err
	}
	if minCollateralOut != nil && result.CollateralOut.Cmp(minCollateralOut) < 0 {
		return nil, ErrSlippageReached
	}
	if minShareOut != nil && result.ShareOut.Cmp(minShareOut) < 0 {
		return nil, ErrSlippageReached
	}

	user, err := e.loadUser(caller)
	if err != nil {
		return nil, err
	}
	user.CollateralBalance.Add(user.CollateralBalance, result.CollateralOut)
	user.ShareBalance.Add(user.ShareBalance, result.ShareOut)
	user.LastActionBlock = height
	cfg.TotalUnclaimedCollateral.Add(cfg.TotalUnclaimedCollateral, result.CollateralOut)
	cfg.TotalUnclaimedShare.Add(cfg.TotalUnclaimedShare, result.ShareOut)
	cfg.TotalFee.Add(cfg.TotalFee, result.Fee)
	if err := e.saveUser(caller, user); err != nil {
		return nil, err
	}
	if err := e.saveConfig(cfg); err != nil {
		return nil, err
	}

	e.emit(events.PoolRedeemed{
		Account:       caller,
		Input:         amount,
		ShareOut:      result.ShareOut,
		CollateralOut: result.CollateralOut,
		Fee:           result.Fee,
	})
	return &RedeemReceipt{Input: new(big.Int).Set(amount), Result: result}, nil
}

// Collect releases the caller's pending balances. It refuses to run in the
// same block as the account's last mint or redeem.
func (e *Engine) Collect(caller string, height uint64) (*CollectReceipt, error) {
	user, err := e.loadUser(caller)
	if err != nil {
		return nil, err
	}
	if height <= user.LastActionBlock {
		return nil, ErrCollectTooEarly
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	// The accumulators are the sum of all pending balances; draining a user
	// below them means the books are broken, not the user.
	if cfg.TotalUnclaimedSynth.Cmp(user.SynthBalance) < 0 ||
		cfg.TotalUnclaimedShare.Cmp(user.ShareBalance) < 0 ||
		cfg.TotalUnclaimedCollateral.Cmp(user.CollateralBalance) < 0 {
		return nil, errAccountingMismatch
	}

	receipt := &CollectReceipt{
		Synth:      new(big.Int).Set(user.SynthBalance),
		Share:      new(big.Int).Set(user.ShareBalance),
		Collateral: new(big.Int).Set(user.CollateralBalance),
	}
	cfg.TotalUnclaimedSynth.Sub(cfg.TotalUnclaimedSynth, user.SynthBalance)
	cfg.TotalUnclaimedShare.Sub(cfg.TotalUnclaimedShare, user.ShareBalance)
	cfg.TotalUnclaimedCollateral.Sub(cfg.TotalUnclaimedCollateral, user.CollateralBalance)
	user.SynthBalance.SetInt64(0)
	user.ShareBalance.SetInt64(0)
	user.CollateralBalance.SetInt64(0)
	if err := e.saveUser(caller, user); err != nil {
		return nil, err
	}
	if err := e.saveConfig(cfg); err != nil {
		return nil, err
	}

	if receipt.Synth.Sign() > 0 {
		receipt.Instructions = append(receipt.Instructions, TokenMint{
			Token: cfg.Synth, Recipient: caller, Amount: new(big.Int).Set(receipt.Synth),
		})
	}
	if receipt.Share.Sign() > 0 {
		receipt.Instructions = append(receipt.Instructions, TokenMint{
			Token: cfg.Share, Recipient: caller, Amount: new(big.Int).Set(receipt.Share),
		})
	}
	if receipt.Collateral.Sign() > 0 {
		receipt.Instructions = append(receipt.Instructions, BankSend{
			Recipient: caller, Denom: cfg.CollateralDenom, Amount: new(big.Int).Set(receipt.Collateral),
		})
	}
	e.emit(events.PoolCollected{
		Account:          caller,
		CollateralAmount: receipt.Collateral,
		SynthAmount:      receipt.Synth,
		ShareAmount:      receipt.Share,
	})
	return receipt, nil
}

// RefreshCollateralRatio nudges the ratio one step toward the peg band,
// driven by the synth TWAP. The TWAP must have been recomputed since the
// previous refresh; a stale reading is rejected outright.
func (e *Engine) RefreshCollateralRatio(now uint64) (*big.Int, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if now < cfg.LastRefreshCollateralRatio+cfg.RefreshCollateralRatioCooldown {
		return nil, ErrCollateralRatioRefreshCooldown
	}
	twap, lastTwapUpdate, err := e.synthOracle.TWAP()
	if err != nil {
		return nil, err
	}
	if lastTwapUpdate < cfg.LastRefreshCollateralRatio {
		return nil, oracle.ErrPriceUnavailableOrOutdated
	}

	precision := unit.Precision()
	upper := new(big.Int).Add(precision, cfg.PriceBand)
	lower := new(big.Int).Sub(precision, cfg.PriceBand)
	ratio := new(big.Int).Set(cfg.CollateralRatio)
	switch {
	case twap.Cmp(upper) > 0:
		// Synth trades above peg: lower the ratio to cheapen minting.
		ratio.Sub(ratio, cfg.CollateralRatioStep)
	case twap.Cmp(lower) < 0:
		// Synth trades below peg: raise the ratio to harden backing.
		ratio.Add(ratio, cfg.CollateralRatioStep)
	}
	if ratio.Cmp(cfg.MinCollateralRatio) < 0 {
		ratio.Set(cfg.MinCollateralRatio)
	}
	if ratio.Cmp(precision) > 0 {
		ratio.Set(precision)
	}
	cfg.CollateralRatio = ratio
	cfg.LastRefreshCollateralRatio = now
	if err := e.saveConfig(cfg); err != nil {
		return nil, err
	}
	e.emit(events.CollateralRatioRefreshed{CollateralRatio: ratio, Timestamp: now})
	return new(big.Int).Set(ratio), nil
}

// AdvanceEpoch rolls the supply-expansion window over. Permissionless; the
// epoch's own duration gate is the only rate limit.
func (e *Engine) AdvanceEpoch(now uint64) (*big.Int, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return e.epoch.NextEpoch(cfg.Synth, now)
}

// BurnShare returns an instruction burning the pool's entire share balance.
// The whole balance is burned deliberately, not just the last swap's output.
func (e *Engine) BurnShare() (*TokenBurn, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Share == "" {
		return nil, ErrTokenNotSet
	}
	if e.tokens == nil {
		return nil, errNoTokenQuerier
	}
	balance, err := e.tokens.Balance(cfg.Share, e.poolAddr)
	if err != nil {
		return nil, err
	}
	e.emit(events.ShareBurned{BurnAmount: balance})
	return &TokenBurn{Token: cfg.Share, Amount: new(big.Int).Set(balance)}, nil
}

// SetFee replaces the fee schedule. Owner-gated.
func (e *Engine) SetFee(caller string, mintingFee, redemptionFee *big.Int) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	if !validRate(mintingFee) || !validRate(redemptionFee) {
		return ErrInvalidRate
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	cfg.MintingFee = new(big.Int).Set(mintingFee)
	cfg.RedemptionFee = new(big.Int).Set(redemptionFee)
	return e.saveConfig(cfg)
}

// Toggle flips the two kill-switches. Owner-gated.
func (e *Engine) Toggle(caller string, mintPaused, redeemPaused bool) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	cfg.MintPaused = mintPaused
	cfg.RedeemPaused = redeemPaused
	return e.saveConfig(cfg)
}

// SetMinCollateralRatio replaces the ratio floor. Owner-gated.
func (e *Engine) SetMinCollateralRatio(caller string, value *big.Int) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	if !validRate(value) {
		return ErrInvalidRate
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	cfg.MinCollateralRatio = new(big.Int).Set(value)
	return e.saveConfig(cfg)
}

// ConfigSynthOracle re-points the synth price oracle. Owner-gated.
func (e *Engine) ConfigSynthOracle(caller, pairAddr string, baseIndex uint8, twapPeriod, now uint64) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	return e.synthOracle.Config(pairAddr, baseIndex, twapPeriod, now)
}

// ConfigShareOracle re-points the share price oracle. Owner-gated.
func (e *Engine) ConfigShareOracle(caller, pairAddr string, baseIndex uint8, twapPeriod, now uint64) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	return e.shareOracle.Config(pairAddr, baseIndex, twapPeriod, now)
}

// ConfigEpochOracle re-points the epoch's price source. Owner-gated.
func (e *Engine) ConfigEpochOracle(caller, pairAddr string, baseIndex uint8, now uint64) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	return e.epoch.ConfigOracle(pairAddr, baseIndex, now)
}

// SetEpochConfig replaces the expansion-policy knobs. Owner-gated.
func (e *Engine) SetEpochConfig(caller string, duration uint64, ceilPrice, maxExpansionRate *big.Int) error {
	if err := e.owners.AssertOwner(caller); err != nil {
		return err
	}
	return e.epoch.ConfigEpoch(duration, ceilPrice, maxExpansionRate)
}

func (e *Engine) loadConfig() (PoolConfig, error) {
	if e == nil || e.state == nil {
		return PoolConfig{}, errNilState
	}
	var stored storedPoolConfig
	ok, err := e.state.KVGet(poolConfigKeyPrefix, &stored)
	if err != nil {
		return PoolConfig{}, err
	}
	if !ok {
		return PoolConfig{}, ErrNotInitialised
	}
	return stored.toConfig()
}

func (e *Engine) saveConfig(cfg PoolConfig) error {
	stored, err := newStoredPoolConfig(cfg)
	if err != nil {
		return err
	}
	return e.state.KVPut(poolConfigKeyPrefix, stored)
}

func (e *Engine) loadUser(addr string) (UserInfo, error) {
	if e == nil || e.state == nil {
		return UserInfo{}, errNilState
	}
	var stored storedUserInfo
	ok, err := e.state.KVGet(userKey(addr), &stored)
	if err != nil {
		return UserInfo{}, err
	}
	if !ok {
		return newUserInfo(), nil
	}
	return stored.toUserInfo()
}

func (e *Engine) saveUser(addr string, user UserInfo) error {
	stored, err := newStoredUserInfo(user)
	if err != nil {
		return err
	}
	return e.state.KVPut(userKey(addr), stored)
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func amountOf(funds []Coin, denom string) *big.Int {
	total := big.NewInt(0)
	for _, coin := range funds {
		if coin.Denom != denom || coin.Amount == nil {
			continue
		}
		total.Add(total, coin.Amount)
	}
	return total
}

func validRate(rate *big.Int) bool {
	return rate != nil && rate.Sign() >= 0 && rate.Cmp(unit.Precision()) <= 0
}
