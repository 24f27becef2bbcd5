package caller

import (
	"io"

	"github.com/carbocation/pfx"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
	"github.com/gocarina/gocsv"
)

// missingCall is reported for a SNP with no usable genotype.
const missingCall = "??"

// Result is the APOE call for one sample. Sex and Phenotype are carried
// through from formats that have them (PED, RAW, BGEN .sample) and are
// otherwise empty.
type Result struct {
	SampleID    string `csv:"sample_id"`
	RS429358    string `csv:"rs429358"`
	RS7412      string `csv:"rs7412"`
	Diplotype   string `csv:"apoe_genotype"`
	RiskProfile string `csv:"risk_profile"`
	IsE4Carrier bool   `csv:"is_e4_carrier"`
	IsE2Carrier bool   `csv:"is_e2_carrier"`
	Sex         string `csv:"sex"`
	Phenotype   string `csv:"phenotype"`
}

// newResult fills in everything that follows from the diplotype.
func newResult(sampleID, gt429, gt7412, dip string) Result {
	return Result{
		SampleID:    sampleID,
		RS429358:    gt429,
		RS7412:      gt7412,
		Diplotype:   dip,
		RiskProfile: diplotype.RiskProfile(dip),
		IsE4Carrier: diplotype.IsE4Carrier(dip),
		IsE2Carrier: diplotype.IsE2Carrier(dip),
	}
}

// resolve looks up a pair of genotype calls.
func resolve(res diplotype.Resolver, sampleID, gt429, gt7412 string) Result {
	return newResult(sampleID, gt429, gt7412, res.Resolve(gt429, gt7412))
}

// WriteResults writes results as CSV with a header row.
func WriteResults(w io.Writer, results []Result) error {
	if err := gocsv.Marshal(&results, w); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// ReadResults reads a CSV previously written by WriteResults. Columns may be
// in any order; sex and phenotype may be absent.
func ReadResults(r io.Reader) ([]Result, error) {
	var results []Result
	if err := gocsv.Unmarshal(r, &results); err != nil {
		return nil, pfx.Err(err)
	}

	return results, nil
}
