package hwe

import (
	"math"
	"testing"
)

type expectations struct {
	AA int64
	Aa int64
	aa int64

	P float64
}

// Truth values calculated by https://www.cog-genomics.org/software/stats
func TestExact(t *testing.T) {
	for _, v := range []expectations{
		{5000, 0, 5000, 0},
		{500, 0, 500, 1.319669097657e-301},
		{83, 13, 4, 0.010293},
		{50, 57, 14, 0.8422797565708},
		{2, 1, 3, 0.15151515151515},
		{500, 2, 0, 1},
		{500, 0, 4, 1.033376916931e-10},
		{500, 0, 2, 0.000002988038880362},
		{500, 1, 2, 0.0000148807309415},
		{500, 4, 2, 0.0002050449518921},
		{500, 2, 2, 0.00004443531076574},
	} {
		if p, expected := Exact(v.AA, v.Aa, v.aa), v.P; math.Abs(p-expected) > 1e-6 {
			t.Fatalf("\nError with input: %+v\nP: %.12f\nExpected: %.12f\nDiff: %.12f\n", v, p, expected, p-expected)
		}
	}
}

func TestExactIsSymmetric(t *testing.T) {
	if a, b := Exact(83, 13, 4), Exact(4, 13, 83); a != b {
		t.Fatalf("Exact depends on allele orientation: %v vs %v", a, b)
	}
}

func TestExactDegenerate(t *testing.T) {
	for _, v := range []expectations{
		{0, 0, 0, 1},
		{100, 0, 0, 1},
		{0, 0, 100, 1},
	} {
		if p := Exact(v.AA, v.Aa, v.aa); p != v.P {
			t.Errorf("Exact(%d, %d, %d) = %v, expected %v", v.AA, v.Aa, v.aa, p, v.P)
		}
	}
}

func TestChiSquareMonomorphic(t *testing.T) {
	if x := ChiSquare(1000, 0, 0); x != 0 {
		t.Fatalf("Expected 0, got %v", x)
	}
	if p := Approximate(1000, 0, 0); p != 1 {
		t.Fatalf("Expected P=1 for a monomorphic site, got %v", p)
	}
}

func TestFastFallsBackToExact(t *testing.T) {
	c := Counts{Hom1: 83, Het: 13, Hom2: 4}
	if p := Fast(c, 0.05); math.Abs(p-0.010293) > 1e-6 {
		t.Fatalf("Expected the exact P-value below the cutoff, got %v", p)
	}

	c = Counts{Hom1: 50, Het: 57, Hom2: 14}
	if p := Fast(c, 1e-8); p < 0.05 {
		t.Fatalf("Expected a non-significant approximate P-value, got %v", p)
	}
	if c.N() != 121 {
		t.Fatalf("Expected N=121, got %d", c.N())
	}
}
