// Package hwe tests biallelic genotype counts for Hardy-Weinberg equilibrium.
// For APOE calling it is a sanity check on the two defining SNPs: a strong
// departure from equilibrium in a population cohort usually means a strand
// flip, a mislabeled column or a badly clustered assay.
package hwe

import (
	"math"

	"github.com/BenLubar/memoize"
	"github.com/tokenme/probab/dst"
)

// Counts holds genotype counts at one biallelic site.
type Counts struct {
	Hom1 int64 // homozygous for the first allele
	Het  int64
	Hom2 int64 // homozygous for the second allele
}

func (c Counts) N() int64 {
	return c.Hom1 + c.Het + c.Hom2
}

// Exact computes the exact Hardy-Weinberg equilibrium P-value using the
// recurrence over heterozygote counts from Wigginton, Cutler & Abecasis (2005),
// AJHG 76:887. Exact is safe to call from concurrent goroutines.
func Exact(AA, Aa, aa int64) float64 {
	if AA < 0 || Aa < 0 || aa < 0 {
		return math.NaN()
	}

	homc, homr := AA, aa
	if homr > homc {
		homc, homr = homr, homc
	}

	rare := 2*homr + Aa
	n := AA + Aa + aa
	if n == 0 || rare == 0 {
		return 1.0
	}

	probs := make([]float64, rare+1)

	// Start at the most likely heterozygote count, which has the same parity as
	// the number of rare alleles.
	mid := rare * (2*n - rare) / (2 * n)
	if (rare%2 == 0) != (mid%2 == 0) {
		mid++
	}

	probs[mid] = 1.0
	sum := 1.0

	currHomr := (rare - mid) / 2
	currHomc := n - mid - currHomr
	for h := mid; h > 1; h -= 2 {
		probs[h-2] = probs[h] * float64(h) * float64(h-1) /
			(4.0 * float64(currHomr+1) * float64(currHomc+1))
		sum += probs[h-2]
		currHomr++
		currHomc++
	}

	currHomr = (rare - mid) / 2
	currHomc = n - mid - currHomr
	for h := mid; h <= rare-2; h += 2 {
		probs[h+2] = probs[h] * 4.0 * float64(currHomr) * float64(currHomc) /
			(float64(h+2) * float64(h+1))
		sum += probs[h+2]
		currHomr--
		currHomc--
	}

	observed := probs[Aa] / sum
	p := 0.0
	for _, prob := range probs {
		if prob/sum <= observed {
			p += prob / sum
		}
	}

	return math.Min(1.0, p)
}

// Approximate returns the 1 degree of freedom chi square P-value.
func Approximate(AA, Aa, aa float64) (p float64) {
	chisq := ChiSquare(AA, Aa, aa)
	if chisq == 0 {
		return 1.0
	}

	defer func() {
		if recover() != nil {
			p = math.NaN()
		}
	}()

	return 1.0 - dst.ChiSquareCDF(1)(chisq)
}

// ChiSquare returns the chi square statistic comparing observed genotype counts
// with those expected from the observed allele frequencies. Monomorphic sites
// yield 0.
func ChiSquare(AA, Aa, aa float64) float64 {
	A := AA*2 + Aa
	a := aa*2 + Aa
	if A == 0 || a == 0 {
		return 0.0
	}

	N := AA + Aa + aa
	p := A / (A + a)
	q := a / (A + a)

	eAA := p * p * N
	eAa := 2.0 * p * q * N
	eaa := q * q * N

	return math.Pow(eAA-AA, 2)/eAA +
		math.Pow(eAa-Aa, 2)/eAa +
		math.Pow(eaa-aa, 2)/eaa
}

var memoizedExact = memoize.Memoize(Exact)

// Fast uses the chi square approximation, and only computes the exact P-value
// when the approximation falls below cutoff. Exact results are memoized.
func Fast(c Counts, cutoff float64) float64 {
	p := Approximate(float64(c.Hom1), float64(c.Het), float64(c.Hom2))
	if math.IsNaN(p) || p < cutoff {
		return memoizedExact.(func(int64, int64, int64) float64)(c.Hom1, c.Het, c.Hom2)
	}

	return p
}
