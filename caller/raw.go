package caller

import (
	"context"
	"fmt"
	"io"
	"strings"

	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
)

// CallRaw reads PLINK --recode A output, where each SNP column is named
// <rsID>_<counted allele> and holds a 0-2 dosage.
func CallRaw(ctx context.Context, path string, opts Options) ([]Result, error) {
	f, err := apoe.Open(ctx, path, opts.Storage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadRaw(f, opts)
}

func ReadRaw(r io.Reader, opts Options) ([]Result, error) {
	t, err := tabular.ReadWhitespace(r, true)
	if err != nil {
		return nil, err
	}

	col429, counted429 := dosageColumn(t, diplotype.RS429358)
	col7412, counted7412 := dosageColumn(t, diplotype.RS7412)
	var missing []string
	if col429 < 0 {
		missing = append(missing, diplotype.RS429358)
	}
	if col7412 < 0 {
		missing = append(missing, diplotype.RS7412)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no dosage column for %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	idCol, _ := t.IndexAny("IID", "FID")
	sexCol := t.Index("SEX")
	phenoCol := t.Index("PHENOTYPE")

	out := make([]Result, 0, t.Len())
	for row := range t.Rows {
		dip, gt429, gt7412 := opts.Resolver.FromDosageStrings(
			t.Value(row, col429), t.Value(row, col7412), counted429, counted7412)

		res := newResult(t.Value(row, idCol), gt429, gt7412, dip)
		res.Sex = t.Value(row, sexCol)
		res.Phenotype = t.Value(row, phenoCol)
		out = append(out, res)
	}

	return out, nil
}

// dosageColumn finds rsid's column and its counted allele. PLINK names it
// "rs429358_C", or "rs429358_C(/T)" when the other allele is included.
func dosageColumn(t tabular.Table, rsid string) (int, string) {
	i := t.IndexPrefix(rsid + "_")
	if i < 0 {
		return t.Index(rsid), ""
	}

	counted := strings.TrimPrefix(t.Header[i], rsid+"_")
	if paren := strings.Index(counted, "("); paren >= 0 {
		counted = counted[:paren]
	}

	return i, counted
}
