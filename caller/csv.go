package caller

import (
	"context"
	"fmt"
	"io"
	"strings"

	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
)

// CallCSV reads a delimited file with a header row and one genotype column
// per SNP.
func CallCSV(ctx context.Context, path string, opts Options) ([]Result, error) {
	f, err := apoe.Open(ctx, path, opts.Storage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f, opts)
}

func ReadCSV(r io.Reader, opts Options) ([]Result, error) {
	var t tabular.Table
	var err error
	if opts.Delimiter == 0 {
		t, err = tabular.ReadSniffed(r)
	} else {
		t, err = tabular.ReadDelimited(r, opts.Delimiter)
	}
	if err != nil {
		return nil, err
	}

	return callTable(t, opts)
}

func callTable(t tabular.Table, opts Options) ([]Result, error) {
	wanted := []string{opts.SampleColumn, opts.RS429358Column, opts.RS7412Column}
	idx := make([]int, len(wanted))
	var missing []string
	for i, name := range wanted {
		if idx[i] = t.Index(name); idx[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	sexCol, _ := t.IndexAny("sex", "gender")
	phenoCol, _ := t.IndexAny("phenotype", "pheno")

	out := make([]Result, 0, t.Len())
	for row := range t.Rows {
		r := resolve(opts.Resolver,
			strings.TrimSpace(t.Value(row, idx[0])),
			strings.TrimSpace(t.Value(row, idx[1])),
			strings.TrimSpace(t.Value(row, idx[2])))
		r.Sex = t.Value(row, sexCol)
		r.Phenotype = t.Value(row, phenoCol)
		out = append(out, r)
	}

	return out, nil
}
