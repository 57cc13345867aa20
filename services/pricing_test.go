package services

import (
	"math"
	"testing"
)

func TestFinalPriceFormula(t *testing.T) {
	base := int64(19900)
	for d := 0; d <= 100; d++ {
		want := int64(math.Round(float64(base) * (1 - float64(d)/100)))
		if got := FinalPrice(base, d); got != want {
			t.Fatalf("FinalPrice(%d, %d) = %d, want %d", base, d, got, want)
		}
	}
}

func TestFinalPriceNoDiscount(t *testing.T) {
	if got := FinalPrice(19900, 0); got != 19900 {
		t.Fatalf("expected base price unchanged, got %d", got)
	}
}

func TestFinalPriceKnownValues(t *testing.T) {
	cases := []struct {
		base    int64
		percent int
		want    int64
	}{
		{19900, 40, 11940},
		{19900, 100, 0},
		{19900, 50, 9950},
		{2000, 0, 2000},
		{999, 33, 669}, // 669.33 rounds down
	}
	for _, tc := range cases {
		if got := FinalPrice(tc.base, tc.percent); got != tc.want {
			t.Errorf("FinalPrice(%d, %d) = %d, want %d", tc.base, tc.percent, got, tc.want)
		}
	}
}

func TestFinalPriceClampsOverflow(t *testing.T) {
	if got := FinalPrice(19900, 150); got != 0 {
		t.Fatalf("discount above 100 should clamp to free, got %d", got)
	}
	if got := FinalPrice(19900, -5); got != 19900 {
		t.Fatalf("negative discount should be ignored, got %d", got)
	}
}
