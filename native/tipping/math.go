package tipping

import (
	"math"
	"math/bits"

	"github.com/holiman/uint256"
)

// CalculateFee returns floor(amount*bps/10000).
func CalculateFee(amount uint64, bps uint64) (uint64, error) {
	return mulDiv(amount, bps, BpsDenominator)
}

// mulDiv returns floor(a*b/d). The product is formed in 256 bits so it cannot
// wrap; the quotient must fit back into 64 bits.
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrMathOverflow
	}
	out, overflow := new(uint256.Int).MulDivOverflow(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(d))
	if overflow || !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}

// ValidateSplitBps requires the shares to sum to exactly 10000.
func ValidateSplitBps(shares []uint16) error {
	var total uint64
	for _, share := range shares {
		total += uint64(share)
	}
	if total != BpsDenominator {
		return ErrInvalidSplitBps
	}
	return nil
}

// CalculateShares divides total across shares. Every recipient but the last
// receives floor(total*bps/10000); the last absorbs the rounding remainder so
// the parts always sum to total.
func CalculateShares(total uint64, shares []uint16) ([]uint64, error) {
	if len(shares) == 0 {
		return nil, ErrTooManySplitRecipients
	}
	if err := ValidateSplitBps(shares); err != nil {
		return nil, err
	}
	out := make([]uint64, len(shares))
	var distributed uint64
	for i, share := range shares[:len(shares)-1] {
		part, err := CalculateFee(total, uint64(share))
		if err != nil {
			return nil, err
		}
		out[i] = part
		if distributed, err = addUint64(distributed, part); err != nil {
			return nil, err
		}
	}
	last, err := subUint64(total, distributed)
	if err != nil {
		return nil, err
	}
	out[len(out)-1] = last
	return out, nil
}

func addUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

func subUint64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrMathUnderflow
	}
	return diff, nil
}

func saturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
