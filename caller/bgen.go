package caller

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/bgen"
	"github.com/carbocation/pfx"
	apoe "github.com/dsugurtuna/apoe-genotyping-toolkit"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// CallBGEN looks both SNPs up in the .bgi index and hard-calls every sample.
// The BGEN itself may be read from gs:// directly; a gs:// index is copied to a
// local temporary file first.
func CallBGEN(ctx context.Context, path string, opts Options) ([]Result, error) {
	bgiPath := opts.BGIPath
	if bgiPath == "" {
		bgiPath = path + ".bgi"
	}

	if !strings.HasPrefix(path, "gs://") {
		var err error
		if path, err = apoe.ExpandHome(path); err != nil {
			return nil, err
		}
	}

	localBGI, cleanup, err := apoe.LocalCopy(ctx, bgiPath, opts.Storage)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	bg, err := bgen.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer bg.Close()

	bgi, err := bgen.OpenBGI(localBGI)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer bgi.Close()

	positions, err := assemblyPositions(opts.Assembly)
	if err != nil {
		return nil, err
	}
	rdr := bg.NewVariantReader()

	calls := make(map[string][]string, 2)
	for _, snp := range []string{diplotype.RS429358, diplotype.RS7412} {
		idx, err := findVariant(bgi.DB, snp, positions[snp])
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s is not in %s", ErrMissingColumns, snp, bgiPath)
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		variant := rdr.ReadAt(int64(idx.FileStartPosition))
		if err := rdr.Error(); err != nil {
			return nil, pfx.Err(err)
		}
		if variant == nil {
			return nil, fmt.Errorf("%s: no variant at offset %d", path, idx.FileStartPosition)
		}
		if len(variant.Alleles) != 2 {
			return nil, fmt.Errorf("%s has %d alleles, expected 2", snp, len(variant.Alleles))
		}

		calls[snp] = bgenGenotypes(variant, opts.MinProbability)
		Logger.Debugf("Read %s (%s/%s) for %d samples", snp, variant.Alleles[0], variant.Alleles[1], len(calls[snp]))
	}

	n := len(calls[diplotype.RS429358])
	if m := len(calls[diplotype.RS7412]); m != n {
		return nil, fmt.Errorf("%s: %d samples at %s but %d at %s", path, n, diplotype.RS429358, m, diplotype.RS7412)
	}

	ids, err := embeddedSampleIDs(bg, n)
	if err != nil {
		return nil, err
	}
	sexes := make([]string, n)
	if opts.SamplePath != "" {
		f, err := apoe.Open(ctx, opts.SamplePath, opts.Storage)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		sampleIDs, sampleSexes, err := ReadOxfordSample(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.SamplePath, err)
		}
		if len(sampleIDs) != n {
			return nil, fmt.Errorf("%s lists %d samples but %s has %d", opts.SamplePath, len(sampleIDs), path, n)
		}
		ids, sexes = sampleIDs, sampleSexes
	}

	out := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		res := resolve(opts.Resolver, ids[i], calls[diplotype.RS429358][i], calls[diplotype.RS7412][i])
		res.Sex = sexes[i]
		out = append(out, res)
	}

	return out, nil
}

// embeddedSampleIDs returns the sample IDs stored in the BGEN header, or the
// zero-based sample row when the file carries none.
func embeddedSampleIDs(bg *bgen.BGEN, n int) ([]string, error) {
	ids := make([]string, n)
	if !bg.FlagHasSampleIDs {
		for i := range ids {
			ids[i] = strconv.Itoa(i)
		}
		return ids, nil
	}

	samples, err := bgen.ReadSamples(bg)
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(samples) != n {
		return nil, fmt.Errorf("%s: header lists %d samples but variants carry %d", bg.FilePath, len(samples), n)
	}
	for i, sample := range samples {
		ids[i] = sample.SampleID
	}

	return ids, nil
}

// findVariant looks a SNP up by rsID, falling back to its chromosome 19
// position when pos is nonzero.
func findVariant(db *sqlx.DB, rsID string, pos uint64) (bgen.VariantIndex, error) {
	row := bgen.VariantIndex{}
	err := db.Get(&row, "SELECT * FROM Variant WHERE rsid=? LIMIT 1", rsID)
	if errors.Is(err, sql.ErrNoRows) && pos > 0 {
		err = db.Get(&row, "SELECT * FROM Variant WHERE chromosome IN ('19', 'chr19') AND position=? LIMIT 1", pos)
	}

	return row, err
}

func bgenGenotypes(v *bgen.Variant, minProb float64) []string {
	a0, a1 := string(v.Alleles[0]), string(v.Alleles[1])

	out := make([]string, len(v.SampleProbabilities))
	for i, sp := range v.SampleProbabilities {
		if sp.Missing || sp.Ploidy != 2 {
			out[i] = missingCall
			continue
		}
		out[i] = hardCall(sp.Probabilities, v.Phased, a0, a1, minProb)
	}

	return out
}

// hardCall turns diploid probabilities into bases. Unphased probabilities are
// ordered (a0a0, a0a1, a1a1); phased ones are (a0, a1) for each haplotype in
// turn. Every chosen probability must reach minProb.
func hardCall(probs []float64, phased bool, a0, a1 string, minProb float64) string {
	if phased {
		if len(probs) != 4 {
			return missingCall
		}
		h1, ok1 := pick(probs[0:2], minProb)
		h2, ok2 := pick(probs[2:4], minProb)
		if !ok1 || !ok2 {
			return missingCall
		}
		return [2]string{a0, a1}[h1] + [2]string{a0, a1}[h2]
	}

	if len(probs) != 3 {
		return missingCall
	}
	best, ok := pick(probs, minProb)
	if !ok {
		return missingCall
	}

	return [3]string{a0 + a0, a0 + a1, a1 + a1}[best]
}

// pick returns the index of the largest probability, and whether it reaches
// minProb.
func pick(probs []float64, minProb float64) (int, bool) {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	return best, probs[best] >= minProb
}

// ReadOxfordSample reads the sample IDs and sex of an Oxford .sample file.
// The second line, which gives column types, is skipped.
func ReadOxfordSample(r io.Reader) (ids, sexes []string, err error) {
	t, err := tabular.ReadWhitespace(r, true)
	if err != nil {
		return nil, nil, err
	}

	idCol, _ := t.IndexAny("ID_2", "ID_1")
	if idCol < 0 {
		return nil, nil, fmt.Errorf("%w: ID_1 or ID_2", ErrMissingColumns)
	}
	sexCol := t.Index("sex")

	rows := t.Rows
	if len(rows) > 0 && t.Value(0, 0) == "0" {
		rows = rows[1:]
	}

	sub := tabular.Table{Header: t.Header, Rows: rows}
	for i := range sub.Rows {
		ids = append(ids, sub.Value(i, idCol))
		sexes = append(sexes, sub.Value(i, sexCol))
	}

	return ids, sexes, nil
}
