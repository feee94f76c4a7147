package pool

import (
	"fmt"
	"math/big"
)

// UserInfo tracks an account's pending claims and the height of its last
// mint or redeem. Records are created lazily with zero balances.
type UserInfo struct {
	LastActionBlock   uint64
	SynthBalance      *big.Int
	ShareBalance      *big.Int
	CollateralBalance *big.Int
}

func newUserInfo() UserInfo {
	return UserInfo{
		SynthBalance:      big.NewInt(0),
		ShareBalance:      big.NewInt(0),
		CollateralBalance: big.NewInt(0),
	}
}

type storedUserInfo struct {
	LastActionBlock   uint64
	SynthBalance      string
	ShareBalance      string
	CollateralBalance string
}

func newStoredUserInfo(user UserInfo) (storedUserInfo, error) {
	if user.SynthBalance == nil || user.ShareBalance == nil || user.CollateralBalance == nil {
		return storedUserInfo{}, errNilAmount
	}
	return storedUserInfo{
		LastActionBlock:   user.LastActionBlock,
		SynthBalance:      user.SynthBalance.String(),
		ShareBalance:      user.ShareBalance.String(),
		CollateralBalance: user.CollateralBalance.String(),
	}, nil
}

func (s storedUserInfo) toUserInfo() (UserInfo, error) {
	user := UserInfo{LastActionBlock: s.LastActionBlock}
	var err error
	if user.SynthBalance, err = parseStoredAmount(s.SynthBalance); err != nil {
		return UserInfo{}, err
	}
	if user.ShareBalance, err = parseStoredAmount(s.ShareBalance); err != nil {
		return UserInfo{}, err
	}
	if user.CollateralBalance, err = parseStoredAmount(s.CollateralBalance); err != nil {
		return UserInfo{}, err
	}
	return user, nil
}

func parseStoredAmount(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errCorruptState, raw)
	}
	return value, nil
}
