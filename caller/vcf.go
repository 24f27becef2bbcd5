package caller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/vcfgo"
	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
)

// Chromosome 19 positions of the two SNPs, by genome assembly.
var snpPositions = map[string]map[string]uint64{
	"37": {
		diplotype.RS429358: 45411941,
		diplotype.RS7412:   45412079,
	},
	"38": {
		diplotype.RS429358: 44908684,
		diplotype.RS7412:   44908822,
	},
}

// assemblyPositions accepts "37", "38", "GRCh37" or "GRCh38". An empty
// assembly disables matching by position.
func assemblyPositions(assembly string) (map[string]uint64, error) {
	if assembly == "" {
		return nil, nil
	}

	positions, ok := snpPositions[strings.TrimPrefix(strings.ToLower(assembly), "grch")]
	if !ok {
		return nil, fmt.Errorf("unknown assembly %q, expected 37 or 38", assembly)
	}

	return positions, nil
}

// CallVCF streams a VCF, which may be compressed, and stops once both SNPs
// have been seen.
func CallVCF(ctx context.Context, path string, opts Options) ([]Result, error) {
	f, err := apoe.Open(ctx, path, opts.Storage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadVCF(f, opts)
}

func ReadVCF(r io.Reader, opts Options) ([]Result, error) {
	positions, err := assemblyPositions(opts.Assembly)
	if err != nil {
		return nil, err
	}

	rdr, err := vcfgo.NewReader(bufio.NewReaderSize(r, 1024*1024), false)
	if err != nil {
		return nil, err
	}

	samples := rdr.Header.SampleNames
	calls := make(map[string][]string, 2)

	i := 0
	for ; len(calls) < 2; i++ {
		variant := rdr.Read()
		if variant == nil {
			break
		}

		snp := matchVariant(variant, positions)
		if snp == "" {
			continue
		}
		if _, seen := calls[snp]; seen {
			continue
		}

		calls[snp] = vcfGenotypes(variant, len(samples))
		Logger.Debugf("Found %s at %s:%d", snp, variant.Chrom(), variant.Pos)
	}
	if err := rdr.Error(); err != nil {
		return nil, err
	}

	var missing []string
	for _, snp := range []string{diplotype.RS429358, diplotype.RS7412} {
		if _, ok := calls[snp]; !ok {
			missing = append(missing, snp)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s not found after %d variants", ErrMissingColumns, strings.Join(missing, ", "), i)
	}

	out := make([]Result, 0, len(samples))
	for j, sample := range samples {
		out = append(out, resolve(opts.Resolver, sample, calls[diplotype.RS429358][j], calls[diplotype.RS7412][j]))
	}

	return out, nil
}

// matchVariant returns the rsID the variant represents, by ID first and then
// by chromosome 19 position.
func matchVariant(v *vcfgo.Variant, positions map[string]uint64) string {
	for _, id := range strings.Split(v.Id(), ";") {
		if id == diplotype.RS429358 || id == diplotype.RS7412 {
			return id
		}
	}

	if strings.TrimPrefix(strings.ToLower(v.Chrom()), "chr") != "19" {
		return ""
	}
	for snp, pos := range positions {
		if v.Pos == pos {
			return snp
		}
	}

	return ""
}

// vcfGenotypes spells out each sample's GT as bases, e.g. 0/1 with REF T and
// ALT C becomes "TC". Missing or non-diploid calls become missingCall.
func vcfGenotypes(v *vcfgo.Variant, nSamples int) []string {
	alleles := append([]string{v.Ref()}, v.Alt()...)

	out := make([]string, nSamples)
	for i := range out {
		out[i] = missingCall
		if i >= len(v.Samples) || v.Samples[i] == nil || len(v.Samples[i].GT) != 2 {
			continue
		}

		var b strings.Builder
		for _, gt := range v.Samples[i].GT {
			if gt < 0 || gt >= len(alleles) {
				b.Reset()
				break
			}
			b.WriteString(alleles[gt])
		}
		if b.Len() > 0 {
			out[i] = b.String()
		}
	}

	return out
}
