package utils

import (
	"errors"
	"math/bits"

	"crosschain-hub/internal/types"

	"github.com/holiman/uint256"
)

// BasisPointsDenominator is 100% expressed in basis points.
const BasisPointsDenominator = 10_000

// ErrOverflow reports that a checked operation exceeded the uint64 range.
var ErrOverflow = errors.New("arithmetic overflow")

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b types.Amount) (types.Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return types.Amount(sum), nil
}

// CheckedSum folds CheckedAdd over values.
func CheckedSum(values ...types.Amount) (types.Amount, error) {
	var total types.Amount
	for _, v := range values {
		next, err := CheckedAdd(total, v)
		if err != nil {
			return 0, err
		}
		total = next
	}
	return total, nil
}

// CheckedSub returns a-b or ErrOverflow when b > a.
func CheckedSub(a, b types.Amount) (types.Amount, error) {
	diff, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return types.Amount(diff), nil
}

// SaturatingAdd returns a+b clamped at types.MaxAmount.
func SaturatingAdd(a, b types.Amount) types.Amount {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return types.MaxAmount
	}
	return types.Amount(sum)
}

// SplitFee computes fee = floor(amount*feeBps/10000) in 256-bit space and
// net = amount - fee. fee never exceeds amount while feeBps <= 10000.
func SplitFee(amount types.Amount, feeBps uint16) (fee, net types.Amount, err error) {
	if uint64(feeBps) > BasisPointsDenominator {
		return 0, 0, ErrOverflow
	}
	wide := new(uint256.Int).SetUint64(uint64(amount))
	wide.Mul(wide, uint256.NewInt(uint64(feeBps)))
	wide.Div(wide, uint256.NewInt(BasisPointsDenominator))
	if !wide.IsUint64() {
		return 0, 0, ErrOverflow
	}
	fee = types.Amount(wide.Uint64())
	net, err = CheckedSub(amount, fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, net, nil
}
