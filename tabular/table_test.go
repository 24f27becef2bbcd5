package tabular

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadDelimited(t *testing.T) {
	input := "sample_id,apoe_genotype,Sex,age\n" +
		"# comment lines are skipped\n" +
		"S1,e3/e4,F,50\n" +
		",,,\n" +
		"S2,e3/e3,M\n"

	tbl, err := ReadDelimited(strings.NewReader(input), ',')
	if err != nil {
		t.Fatal(err)
	}

	expected := Table{
		Header: []string{"sample_id", "apoe_genotype", "Sex", "age"},
		Rows: [][]string{
			{"S1", "e3/e4", "F", "50"},
			{"S2", "e3/e3", "M"},
		},
	}
	if diff := cmp.Diff(expected, tbl); diff != "" {
		t.Fatalf("Table mismatch (-want +got):\n%s", diff)
	}

	if i := tbl.Index("sex"); i != 2 {
		t.Errorf("Index(sex) = %d, expected 2", i)
	}
	if i := tbl.Index("year_of_birth"); i != -1 {
		t.Errorf("Index(year_of_birth) = %d, expected -1", i)
	}
	if v := tbl.Value(1, 3); v != "" {
		t.Errorf("Short row should yield an empty value, got %q", v)
	}
	if v := tbl.Value(0, 3); v != "50" {
		t.Errorf("Value(0, 3) = %q, expected 50", v)
	}
}

func TestReadSniffedTabs(t *testing.T) {
	input := "IID\trs429358\trs7412\nS1\tTT\tCC\nS2\tCC\tCC\n"

	tbl, err := ReadSniffed(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 || len(tbl.Header) != 3 {
		t.Fatalf("Expected 3 columns and 2 rows, got %v", tbl)
	}
}

func TestReadWhitespace(t *testing.T) {
	input := "FID IID PAT MAT SEX PHENO rs429358_C rs7412_T\n" +
		"F1  S1   0   0   2   -9    1  0\n" +
		"\n" +
		"F2\tS2\t0\t0\t1\t1\t0\t0\n"

	tbl, err := ReadWhitespace(strings.NewReader(input), true)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", tbl.Len())
	}
	if i := tbl.IndexPrefix("rs7412"); i != 7 {
		t.Errorf("IndexPrefix(rs7412) = %d, expected 7", i)
	}
	if i, name := tbl.IndexAny("gender", "SEX"); i != 4 || name != "SEX" {
		t.Errorf("IndexAny = %d, %q", i, name)
	}

	headless, err := ReadWhitespace(strings.NewReader("F1 S1 0 0 2 -9 CT CC\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	if headless.Header != nil || headless.Len() != 1 {
		t.Fatalf("Unexpected headless table %v", headless)
	}
}

func TestReadDelimitedEmpty(t *testing.T) {
	if _, err := ReadDelimited(strings.NewReader(""), ','); err == nil {
		t.Fatal("Expected an error for an empty input")
	}
}
