package caller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/hwe"
	"github.com/dustin/go-humanize"
)

// Phenotype classes, following PLINK's 1 = control, 2 = case coding.
const (
	PhenotypeCase    = "case"
	PhenotypeControl = "control"
	PhenotypeMissing = "missing"
)

// HWEExactCutoff is the chi square P-value below which Summarise recomputes
// the Hardy-Weinberg P-value with the exact test.
const HWEExactCutoff = 1e-4

// SNPQC is the Hardy-Weinberg check of one SNP over samples with a
// resolvable genotype at it.
type SNPQC struct {
	Counts hwe.Counts
	P      float64
}

type Summary struct {
	Total         int
	Counts        map[string]int
	E4Carriers    int
	E2Carriers    int
	E3E3          int
	Indeterminate int

	// ByPhenotype holds diplotype counts per phenotype class.
	ByPhenotype map[string]map[string]int

	// HWE is keyed by rsID.
	HWE map[string]SNPQC
}

// The two bases at each SNP. The first is the one carried on e3.
var snpAlleles = map[string][2]byte{
	diplotype.RS429358: {'T', 'C'},
	diplotype.RS7412:   {'C', 'T'},
}

func Summarise(results []Result) Summary {
	s := Summary{
		Total:       len(results),
		Counts:      make(map[string]int),
		ByPhenotype: make(map[string]map[string]int),
		HWE:         make(map[string]SNPQC),
	}

	counts := map[string]*hwe.Counts{
		diplotype.RS429358: {},
		diplotype.RS7412:   {},
	}

	for _, r := range results {
		s.Counts[r.Diplotype]++
		if r.IsE4Carrier {
			s.E4Carriers++
		}
		if r.IsE2Carrier {
			s.E2Carriers++
		}
		if r.Diplotype == "e3/e3" {
			s.E3E3++
		}
		if r.Diplotype == diplotype.Unresolved {
			s.Indeterminate++
		}

		class := PhenotypeClass(r.Phenotype)
		if s.ByPhenotype[class] == nil {
			s.ByPhenotype[class] = make(map[string]int)
		}
		s.ByPhenotype[class][r.Diplotype]++

		tally(counts[diplotype.RS429358], r.RS429358, snpAlleles[diplotype.RS429358])
		tally(counts[diplotype.RS7412], r.RS7412, snpAlleles[diplotype.RS7412])
	}

	for snp, c := range counts {
		s.HWE[snp] = SNPQC{Counts: *c, P: hwe.Fast(*c, HWEExactCutoff)}
	}

	return s
}

// tally adds a genotype to c. Anything but a two-base call made of the SNP's
// own alleles is ignored.
func tally(c *hwe.Counts, gt string, alleles [2]byte) {
	gt = diplotype.NormalizeGenotype(gt)
	if len(gt) != 2 {
		return
	}

	n := 0
	for i := 0; i < 2; i++ {
		switch gt[i] {
		case alleles[0]:
		case alleles[1]:
			n++
		default:
			return
		}
	}

	switch n {
	case 0:
		c.Hom1++
	case 1:
		c.Het++
	case 2:
		c.Hom2++
	}
}

// PhenotypeClass maps PLINK phenotype codes, and the words case and control,
// to a phenotype class.
func PhenotypeClass(pheno string) string {
	switch strings.ToLower(strings.TrimSpace(pheno)) {
	case "2", PhenotypeCase:
		return PhenotypeCase
	case "1", PhenotypeControl:
		return PhenotypeControl
	}

	return PhenotypeMissing
}

// FormatSummary renders s as a short plain-text report.
func FormatSummary(s Summary) string {
	var b strings.Builder

	pct := func(n int) float64 {
		if s.Total == 0 {
			return 0
		}
		return 100 * float64(n) / float64(s.Total)
	}

	fmt.Fprintf(&b, "Samples: %s\n", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(&b, "e4 carriers: %s (%.1f%%)\n", humanize.Comma(int64(s.E4Carriers)), pct(s.E4Carriers))
	fmt.Fprintf(&b, "e2 carriers: %s (%.1f%%)\n", humanize.Comma(int64(s.E2Carriers)), pct(s.E2Carriers))
	fmt.Fprintf(&b, "e3/e3: %s (%.1f%%)\n", humanize.Comma(int64(s.E3E3)), pct(s.E3E3))
	fmt.Fprintf(&b, "Indeterminate: %s (%.1f%%)\n", humanize.Comma(int64(s.Indeterminate)), pct(s.Indeterminate))

	b.WriteString("\nDiplotypes:\n")
	for _, d := range sortedKeys(s.Counts) {
		fmt.Fprintf(&b, "  %s: %s\n", d, humanize.Comma(int64(s.Counts[d])))
	}

	if len(s.ByPhenotype) > 1 || (len(s.ByPhenotype) == 1 && s.ByPhenotype[PhenotypeMissing] == nil) {
		b.WriteString("\nBy phenotype:\n")
		for _, class := range sortedKeys(s.ByPhenotype) {
			fmt.Fprintf(&b, "  %s:", class)
			for _, d := range sortedKeys(s.ByPhenotype[class]) {
				fmt.Fprintf(&b, " %s=%d", d, s.ByPhenotype[class][d])
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nHardy-Weinberg:\n")
	for _, snp := range []string{diplotype.RS429358, diplotype.RS7412} {
		qc := s.HWE[snp]
		fmt.Fprintf(&b, "  %s: %d/%d/%d P=%.3g\n", snp, qc.Counts.Hom1, qc.Counts.Het, qc.Counts.Hom2, qc.P)
	}

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
