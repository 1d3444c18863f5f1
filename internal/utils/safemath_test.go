package utils

import (
	"errors"
	"testing"

	"crosschain-hub/internal/types"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := CheckedAdd(40, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum != 42 {
		t.Fatalf("expected 42, got %d", sum)
	}

	if _, err := CheckedAdd(types.MaxAmount, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestCheckedSum(t *testing.T) {
	total, err := CheckedSum(1, 2, 3)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected 6, got %d", total)
	}

	empty, err := CheckedSum()
	if err != nil || empty != 0 {
		t.Fatalf("expected empty sum 0, got %d (%v)", empty, err)
	}

	if _, err := CheckedSum(types.MaxAmount-1, 1, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestCheckedSub(t *testing.T) {
	diff, err := CheckedSub(10, 3)
	if err != nil || diff != 7 {
		t.Fatalf("expected 7, got %d (%v)", diff, err)
	}
	if _, err := CheckedSub(3, 10); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
}

func TestSaturatingAdd(t *testing.T) {
	if got := SaturatingAdd(5, 6); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	if got := SaturatingAdd(types.MaxAmount-2, 10); got != types.MaxAmount {
		t.Fatalf("expected ceiling, got %d", got)
	}
}

func TestSplitFee(t *testing.T) {
	tests := []struct {
		name    string
		amount  types.Amount
		feeBps  uint16
		wantFee types.Amount
		wantNet types.Amount
	}{
		{name: "one percent", amount: 1_000_000, feeBps: 100, wantFee: 10_000, wantNet: 990_000},
		{name: "zero fee", amount: 500, feeBps: 0, wantFee: 0, wantNet: 500},
		{name: "rounds down", amount: 99, feeBps: 100, wantFee: 0, wantNet: 99},
		{name: "max fee", amount: 1_000, feeBps: 1_000, wantFee: 100, wantNet: 900},
		{name: "no overflow at ceiling", amount: types.MaxAmount, feeBps: 1_000, wantFee: 1844674407370955161, wantNet: 16602069666338596454},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net, err := SplitFee(tt.amount, tt.feeBps)
			if err != nil {
				t.Fatalf("split fee: %v", err)
			}
			if fee != tt.wantFee {
				t.Fatalf("expected fee %d, got %d", tt.wantFee, fee)
			}
			if net != tt.wantNet {
				t.Fatalf("expected net %d, got %d", tt.wantNet, net)
			}
			if fee+net != tt.amount {
				t.Fatalf("fee+net %d does not equal gross %d", fee+net, tt.amount)
			}
		})
	}
}

func TestSplitFeeRejectsOversizedBps(t *testing.T) {
	if _, _, err := SplitFee(100, 10_001); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow for bps above 100%%, got %v", err)
	}
}
