package diplotype

import (
	"math"
	"strconv"
	"strings"
)

const missingGenotype = "??"

// Default counted alleles in PLINK --recode A output for the two SNPs: the C
// (risk) allele of rs429358 and the T (protective) allele of rs7412.
const (
	CountedRS429358 = "C"
	CountedRS7412   = "T"
)

// Genotype for 0, 1 and 2 copies of the counted allele, indexed by dosage.
var (
	rs429358ByDosage = [3]string{"TT", "CT", "CC"}
	rs7412ByDosage   = [3]string{"CC", "CT", "TT"}
)

// FromDosage converts allele dosages of the default counted alleles to genotype
// strings and resolves the diplotype. Dosages are rounded half-to-even; values
// outside 0-2 become "??", which resolves to Unresolved.
func (r Resolver) FromDosage(dose429, dose7412 float64) (diplotype, gt429, gt7412 string) {
	gt429 = genotypeForDosage(dose429, rs429358ByDosage)
	gt7412 = genotypeForDosage(dose7412, rs7412ByDosage)

	return r.Resolve(gt429, gt7412), gt429, gt7412
}

// FromDosageStrings parses raw dosage fields (as found in a PLINK .raw file)
// and resolves them. counted429 and counted7412 name the counted allele of each
// SNP; when it is the opposite base from the default the dosage is flipped.
// Unparseable input resolves to Unresolved and echoes the raw strings back.
func (r Resolver) FromDosageStrings(raw429, raw7412, counted429, counted7412 string) (diplotype, gt429, gt7412 string) {
	d429, err429 := strconv.ParseFloat(strings.TrimSpace(raw429), 64)
	d7412, err7412 := strconv.ParseFloat(strings.TrimSpace(raw7412), 64)
	if err429 != nil || err7412 != nil || math.IsNaN(d429) || math.IsNaN(d7412) {
		return Unresolved, raw429, raw7412
	}

	if flipped(counted429, CountedRS429358) {
		d429 = 2 - d429
	}
	if flipped(counted7412, CountedRS7412) {
		d7412 = 2 - d7412
	}

	return r.FromDosage(d429, d7412)
}

// FromDosage uses the standard table.
func FromDosage(dose429, dose7412 float64) (diplotype, gt429, gt7412 string) {
	return Resolver{}.FromDosage(dose429, dose7412)
}

func genotypeForDosage(dose float64, table [3]string) string {
	d := math.RoundToEven(dose)
	if d < 0 || d > 2 {
		return missingGenotype
	}

	return table[int(d)]
}

// flipped is true only when counted names a base, and it is not the default.
func flipped(counted, def string) bool {
	counted = strings.ToUpper(strings.TrimSpace(counted))
	if counted == "" {
		return false
	}

	return counted != def
}
