// Package diplotype maps the two APOE-defining SNPs, rs429358 (codon 112) and
// rs7412 (codon 158), to an APOE diplotype such as "e3/e4".
//
// Haplotypes, written as the rs429358 base followed by the rs7412 base:
//
//	e1: C, T (rare)
//	e2: T, T
//	e3: T, C
//	e4: C, C
package diplotype

import (
	"strings"
)

const (
	RS429358 = "rs429358"
	RS7412   = "rs7412"

	// Unresolved is the label given to any marker pair outside the lookup
	// table, including missing calls.
	Unresolved = "Indeterminate"

	// PrimaryRiskAllele marks carriers of the Alzheimer's risk haplotype.
	PrimaryRiskAllele = "e4"

	// SecondaryAllele marks carriers of the protective haplotype.
	SecondaryAllele = "e2"

	// Ambiguous is what the extended table reports for the double
	// heterozygote, which cannot be phased from two unphased SNPs.
	Ambiguous = "e2/e4 or e1/e3"

	UnknownRisk = "Unknown"
)

type key struct {
	RS429358 string
	RS7412   string
}

// Heterozygotes are listed in both orientations.
var standardTable = map[key]string{
	{"TT", "TT"}: "e2/e2",
	{"TT", "CC"}: "e3/e3",
	{"CC", "CC"}: "e4/e4",

	{"TT", "CT"}: "e2/e3",
	{"TT", "TC"}: "e2/e3",
	{"CT", "CC"}: "e3/e4",
	{"TC", "CC"}: "e3/e4",

	// e2/e4 is far more frequent than e1/e3.
	{"CT", "CT"}: "e2/e4",
	{"TC", "TC"}: "e2/e4",
	{"CT", "TC"}: "e2/e4",
	{"TC", "CT"}: "e2/e4",
}

var extendedTable = map[key]string{
	{"CC", "TT"}: "e1/e1",
	{"CT", "TT"}: "e1/e2",
	{"TC", "TT"}: "e1/e2",
	{"CC", "CT"}: "e1/e4",
	{"CC", "TC"}: "e1/e4",

	{"CT", "CT"}: Ambiguous,
	{"TC", "TC"}: Ambiguous,
	{"CT", "TC"}: Ambiguous,
	{"TC", "CT"}: Ambiguous,
}

var riskProfiles = map[string]string{
	"e2/e2": "Reduced risk",
	"e2/e3": "Reduced risk",
	"e3/e3": "Population baseline",
	"e2/e4": "Uncertain / mixed",
	"e3/e4": "Increased risk",
	"e4/e4": "Substantially increased risk",
}

// Resolver looks up diplotypes. The zero value uses the standard clinical
// table; Extended additionally resolves the rare e1 haplotype.
type Resolver struct {
	Extended bool
}

// Resolve returns the diplotype for a pair of genotype calls, or Unresolved.
// Calls are normalized first, so "C/T", "c|t" and "CT" are equivalent.
func (r Resolver) Resolve(rs429358, rs7412 string) string {
	k := key{NormalizeGenotype(rs429358), NormalizeGenotype(rs7412)}

	if r.Extended {
		if d, ok := extendedTable[k]; ok {
			return d
		}
	}

	if d, ok := standardTable[k]; ok {
		return d
	}

	return Unresolved
}

// Resolve uses the standard table.
func Resolve(rs429358, rs7412 string) string {
	return Resolver{}.Resolve(rs429358, rs7412)
}

// NormalizeGenotype upper-cases a call and strips allele separators.
func NormalizeGenotype(gt string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '|', ' ', '\t':
			return -1
		}
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, gt)
}

// RiskProfile returns the clinical risk category for a diplotype.
func RiskProfile(diplotype string) string {
	if risk, ok := riskProfiles[diplotype]; ok {
		return risk
	}

	return UnknownRisk
}

// IsCarrier reports whether the label carries the given haplotype marker,
// case-insensitively. IsCarrier("e3/E4", PrimaryRiskAllele) is true.
func IsCarrier(label, allele string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(allele))
}

func IsE4Carrier(label string) bool {
	return IsCarrier(label, PrimaryRiskAllele)
}

func IsE2Carrier(label string) bool {
	return IsCarrier(label, SecondaryAllele)
}

// IsUnresolved reports whether a label is exactly the unresolved sentinel.
// Blank labels are not unresolved; they are simply not carriers.
func IsUnresolved(label string) bool {
	return label == Unresolved
}
