package pool

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// TokenKind identifies which of the two dependent tokens a deploy request
// instantiates.
type TokenKind uint8

const (
	TokenSynth TokenKind = iota + 1
	TokenShare
)

// tokenDecimals matches the protocol precision of six decimal places.
const tokenDecimals = 6

// ConstructParams seeds a new pool.
type ConstructParams struct {
	Owner           string
	CollateralDenom string
	SynthName       string
	SynthSymbol     string
	ShareName       string
	ShareSymbol     string
	ShareMaxCap     *big.Int
}

// DeployRequest asks the host to instantiate one of the dependent token
// contracts. The host answers with CompleteTokenDeploy carrying the same ID.
type DeployRequest struct {
	ID       string
	Kind     TokenKind
	Name     string
	Symbol   string
	Decimals uint8
	Minter   string
	MaxCap   *big.Int
}

type storedDeploy struct {
	Kind      uint8
	Completed bool
}

// Construct seeds ownership, the pool record and the epoch window, and
// returns the two token deploy requests. Each token address binds exactly
// once through the matching completion callback.
func (e *Engine) Construct(params ConstructParams) ([]DeployRequest, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, err := e.loadConfig(); err == nil {
		return nil, ErrAlreadyConstructed
	}
	denom := strings.TrimSpace(params.CollateralDenom)
	if denom == "" {
		return nil, ErrMintInvalidCollateralAmount
	}
	if params.ShareMaxCap == nil || params.ShareMaxCap.Sign() <= 0 {
		return nil, ErrInvalidRate
	}
	if err := e.owners.Initialize(params.Owner); err != nil {
		return nil, err
	}
	if err := e.epoch.Initialize(); err != nil {
		return nil, err
	}
	if err := e.saveConfig(DefaultPoolConfig(denom)); err != nil {
		return nil, err
	}

	requests := []DeployRequest{
		{
			ID:       uuid.NewString(),
			Kind:     TokenSynth,
			Name:     params.SynthName,
			Symbol:   params.SynthSymbol,
			Decimals: tokenDecimals,
			Minter:   e.poolAddr,
		},
		{
			ID:       uuid.NewString(),
			Kind:     TokenShare,
			Name:     params.ShareName,
			Symbol:   params.ShareSymbol,
			Decimals: tokenDecimals,
			Minter:   e.poolAddr,
			MaxCap:   new(big.Int).Set(params.ShareMaxCap),
		},
	}
	for _, request := range requests {
		if err := e.state.KVPut(deployKey(request.ID), storedDeploy{Kind: uint8(request.Kind)}); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// CompleteTokenDeploy binds a freshly instantiated token address to the pool
// record. Binding is one-shot per token kind.
func (e *Engine) CompleteTokenDeploy(requestID, tokenAddr string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	addr := strings.TrimSpace(tokenAddr)
	if addr == "" {
		return ErrTokenNotSet
	}
	var record storedDeploy
	ok, err := e.state.KVGet(deployKey(requestID), &record)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownDeployRequest
	}
	if record.Completed {
		return ErrTokenAlreadySet
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	switch TokenKind(record.Kind) {
	case TokenSynth:
		if cfg.Synth != "" {
			return ErrTokenAlreadySet
		}
		cfg.Synth = addr
	case TokenShare:
		if cfg.Share != "" {
			return ErrTokenAlreadySet
		}
		cfg.Share = addr
	default:
		return ErrUnknownDeployRequest
	}
	record.Completed = true
	if err := e.state.KVPut(deployKey(requestID), record); err != nil {
		return err
	}
	return e.saveConfig(cfg)
}
