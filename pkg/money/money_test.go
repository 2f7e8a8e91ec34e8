package money

import "testing"

func TestRound(t *testing.T) {
	if got := Round(10.014); got != 10.01 {
		t.Errorf("Round(10.014) = %v", got)
	}
	if got := Round(10.016); got != 10.02 {
		t.Errorf("Round(10.016) = %v", got)
	}
	if got := Round(150); got != 150 {
		t.Errorf("Round(150) = %v", got)
	}
}

func TestEqual(t *testing.T) {
	if !Equal(0.1+0.2, 0.3) {
		t.Error("expected 0.1+0.2 to equal 0.3 after rounding")
	}
	if Equal(10.00, 10.01) {
		t.Error("expected 10.00 != 10.01")
	}
}

func TestNonNegative(t *testing.T) {
	if got := NonNegative(-5); got != 0 {
		t.Errorf("NonNegative(-5) = %v", got)
	}
	if got := NonNegative(3.456); got != 3.46 {
		t.Errorf("NonNegative(3.456) = %v", got)
	}
}
