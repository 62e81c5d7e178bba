package betlog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDeriveFilledFavoriteWon(t *testing.T) {
	// Target 58¢, market dipped to 55¢, 50 contracts, favorite won.
	out := Derive(58, 55, WinnerFavorite, 50)

	if !out.Filled {
		t.Fatal("order should have filled")
	}
	if out.FillCents != 58 {
		t.Errorf("fill price = %d, want 58", out.FillCents)
	}
	if out.EdgeCents != -3 {
		t.Errorf("edge = %d, want -3", out.EdgeCents)
	}
	if want := decimal.RequireFromString("21"); !out.PnL.Equal(want) {
		t.Errorf("pnl = %s, want 21.00", out.PnL)
	}
}

func TestDeriveFilledFavoriteLost(t *testing.T) {
	out := Derive(58, 55, WinnerUnderdog, 50)
	if want := decimal.RequireFromString("-29"); !out.PnL.Equal(want) {
		t.Errorf("pnl = %s, want -29.00", out.PnL)
	}
}

func TestDeriveNotFilled(t *testing.T) {
	// Market never reached the target: flat either way.
	for _, w := range []Winner{WinnerFavorite, WinnerUnderdog} {
		out := Derive(58, 60, w, 50)
		if out.Filled {
			t.Fatal("order filled above target")
		}
		if out.FillCents != 0 {
			t.Errorf("fill price = %d on unfilled order", out.FillCents)
		}
		if out.EdgeCents != 2 {
			t.Errorf("edge = %d, want 2", out.EdgeCents)
		}
		if !out.PnL.IsZero() {
			t.Errorf("pnl = %s, want 0", out.PnL)
		}
	}
}

func TestDeriveBoundaryFill(t *testing.T) {
	// Lowest exactly at target fills.
	if out := Derive(58, 58, WinnerFavorite, 1); !out.Filled || out.EdgeCents != 0 {
		t.Errorf("boundary: %+v", out)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	first := Derive(62, 40, WinnerFavorite, 17)
	for range 5 {
		again := Derive(62, 40, WinnerFavorite, 17)
		if again.Filled != first.Filled || again.FillCents != first.FillCents ||
			again.EdgeCents != first.EdgeCents || !again.PnL.Equal(first.PnL) {
			t.Fatal("same tuple produced different outcomes")
		}
	}
}

func TestDeriveZeroContracts(t *testing.T) {
	out := Derive(58, 55, WinnerFavorite, 0)
	if !out.PnL.IsZero() {
		t.Errorf("pnl with zero contracts = %s", out.PnL)
	}
}
