package caller

import (
	"context"
	"fmt"
	"io"

	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
)

// Leading columns of a PED line.
const (
	pedFID int = iota
	pedIID
	pedPAT
	pedMAT
	pedSEX
	pedPHENO
	pedFirstGenotype
)

// CallPED reads a headerless PED file. Genotypes may be compound ("CT") or
// split over two allele columns ("C T"). Without a .map file the two SNPs
// are assumed to be rs429358 then rs7412.
func CallPED(ctx context.Context, path string, opts Options) ([]Result, error) {
	order := []string{diplotype.RS429358, diplotype.RS7412}
	if opts.MapPath != "" {
		var err error
		if order, err = ReadMapOrder(opts.MapPath); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.MapPath, err)
		}
	}

	f, err := apoe.Open(ctx, path, opts.Storage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadPED(f, order, opts)
}

// ReadPED reads PED lines whose genotype columns follow the variant order
// given.
func ReadPED(r io.Reader, order []string, opts Options) ([]Result, error) {
	i429, i7412 := -1, -1
	for i, id := range order {
		switch id {
		case diplotype.RS429358:
			i429 = i
		case diplotype.RS7412:
			i7412 = i
		}
	}
	var missing []string
	if i429 < 0 {
		missing = append(missing, diplotype.RS429358)
	}
	if i7412 < 0 {
		missing = append(missing, diplotype.RS7412)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: variant order %v lacks %v", ErrMissingColumns, order, missing)
	}

	t, err := tabular.ReadWhitespace(r, false)
	if err != nil {
		return nil, err
	}

	n := len(order)
	out := make([]Result, 0, t.Len())
	for line, cols := range t.Rows {
		if len(cols) < pedFirstGenotype {
			return nil, fmt.Errorf("PED line %d has %d columns", line+1, len(cols))
		}
		gts := cols[pedFirstGenotype:]

		var gt429, gt7412 string
		switch len(gts) {
		case 2 * n:
			gt429 = gts[2*i429] + gts[2*i429+1]
			gt7412 = gts[2*i7412] + gts[2*i7412+1]
		case n:
			gt429 = gts[i429]
			gt7412 = gts[i7412]
		default:
			return nil, fmt.Errorf("PED line %d has %d genotype columns, expected %d or %d for %d variants", line+1, len(gts), n, 2*n, n)
		}

		res := resolve(opts.Resolver, cols[pedIID], gt429, gt7412)
		res.Sex = cols[pedSEX]
		res.Phenotype = cols[pedPHENO]
		out = append(out, res)
	}

	return out, nil
}
