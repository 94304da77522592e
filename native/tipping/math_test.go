package tipping

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateFee(t *testing.T) {
	cases := []struct {
		amount, bps, want uint64
	}{
		{1_000_000_000, 200, 20_000_000},
		{20_000_000, 100, 200_000},
		{99, 100, 0},
		{10_000, 10_000, 10_000},
		{math.MaxUint64, 10_000, math.MaxUint64},
		{math.MaxUint64, 5_000, math.MaxUint64 / 2},
	}
	for _, tc := range cases {
		got, err := CalculateFee(tc.amount, tc.bps)
		if err != nil {
			t.Fatalf("fee(%d, %d): %v", tc.amount, tc.bps, err)
		}
		if got != tc.want {
			t.Fatalf("fee(%d, %d) = %d, want %d", tc.amount, tc.bps, got, tc.want)
		}
	}
}

func TestCalculateFeeOverflow(t *testing.T) {
	if _, err := CalculateFee(math.MaxUint64, 20_000); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestCalculateSharesAbsorbsRemainder(t *testing.T) {
	shares, err := CalculateShares(100, []uint16{3333, 3333, 3334})
	if err != nil {
		t.Fatalf("shares: %v", err)
	}
	want := []uint64{33, 33, 34}
	for i := range want {
		if shares[i] != want[i] {
			t.Fatalf("share %d = %d, want %d", i, shares[i], want[i])
		}
	}
}

func TestCalculateSharesSumsToTotal(t *testing.T) {
	splits := [][]uint16{
		{5000, 5000},
		{1, 9999},
		{3333, 3333, 3334},
		{2000, 2000, 2000, 2000, 2000},
		{7, 13, 9980},
	}
	totals := []uint64{1, 7, 99, 1_001, 123_456_789, math.MaxUint64}
	for _, split := range splits {
		for _, total := range totals {
			shares, err := CalculateShares(total, split)
			if err != nil {
				t.Fatalf("shares(%d, %v): %v", total, split, err)
			}
			var sum uint64
			for _, s := range shares {
				sum += s
			}
			if sum != total {
				t.Fatalf("shares(%d, %v) sum to %d", total, split, sum)
			}
		}
	}
}

func TestValidateSplitBps(t *testing.T) {
	if err := ValidateSplitBps([]uint16{5000, 5000}); err != nil {
		t.Fatalf("valid split rejected: %v", err)
	}
	for _, bad := range [][]uint16{{5000, 4999}, {5000, 5001}, {}} {
		if err := ValidateSplitBps(bad); !errors.Is(err, ErrInvalidSplitBps) {
			t.Fatalf("split %v: expected InvalidSplitBps, got %v", bad, err)
		}
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if _, err := addUint64(math.MaxUint64, 1); !errors.Is(err, ErrMathOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := subUint64(1, 2); !errors.Is(err, ErrMathUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
	if got := saturatingAdd(math.MaxUint64, 5); got != math.MaxUint64 {
		t.Fatalf("saturating add = %d", got)
	}
	if got := saturatingSub(3, 5); got != 0 {
		t.Fatalf("saturating sub = %d", got)
	}
}

func TestErrorClassification(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Fatalf("nil error must have no code")
	}
	if got := CodeOf(ErrCannotTipSelf); got != "CannotTipSelf" {
		t.Fatalf("code = %q", got)
	}
	if KindOf(ErrNotAdmin) != KindAuthorization {
		t.Fatalf("NotAdmin kind = %s", KindOf(ErrNotAdmin))
	}
	wrapped := errors.Join(errors.New("context"), ErrMathOverflow)
	if KindOf(wrapped) != KindArithmetic {
		t.Fatalf("wrapped kind = %s", KindOf(wrapped))
	}
	if KindOf(errors.New("disk on fire")) != KindInternal {
		t.Fatalf("untyped errors must be internal")
	}
}
