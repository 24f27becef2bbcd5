package stratify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
	"github.com/google/go-cmp/cmp"
)

var testHeader = []string{"sample_id", "apoe_genotype", "gender", "age"}

// people returns one row per age, with ids prefix0, prefix1, ...
func people(prefix, label, gender string, ages ...int) [][]string {
	out := make([][]string, 0, len(ages))
	for i, age := range ages {
		out = append(out, []string{fmt.Sprintf("%s%d", prefix, i), label, gender, strconv.Itoa(age)})
	}

	return out
}

func cohort(groups ...[][]string) tabular.Table {
	t := tabular.Table{Header: testHeader}
	for _, g := range groups {
		t.Rows = append(t.Rows, g...)
	}

	return t
}

func repeat(age, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = age
	}

	return out
}

func unbanded(female, male int, fraction float64) Config {
	cfg := DefaultConfig()
	cfg.TargetFemaleCount = female
	cfg.TargetMaleCount = male
	cfg.CarrierFraction = fraction
	cfg.FemaleAgeBands = nil
	cfg.MaleAgeBands = nil

	return cfg
}

func ids(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.SampleID)
	}

	return out
}

func TestQuotaSplit(t *testing.T) {
	tbl := cohort(
		people("C", "e3/e4", "F", repeat(50, 10)...),
		people("N", "e3/e3", "F", repeat(50, 10)...),
	)

	res, err := Stratify(tbl, unbanded(10, 0, 0.5))
	if err != nil {
		t.Fatal(err)
	}

	if res.Male != nil {
		t.Fatalf("Male arm should be absent with a zero target")
	}
	if res.Female == nil {
		t.Fatalf("Female arm missing")
	}

	expected := Summary{
		Target:               10,
		Selected:             10,
		CarriersSelected:     5,
		NonCarriersSelected:  5,
		CarriersAvailable:    10,
		NonCarriersAvailable: 10,
	}
	if diff := cmp.Diff(expected, res.Female.Summary()); diff != "" {
		t.Fatalf("Summary mismatch (-want +got):\n%s", diff)
	}

	got := ids(res.Female.Records())
	want := []string{"C0", "C1", "C2", "C3", "C4", "N0", "N1", "N2", "N3", "N4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Selection should be carriers then non-carriers in input order (-want +got):\n%s", diff)
	}
}

func TestSplitQuota(t *testing.T) {
	tests := []struct {
		target   int
		fraction float64
		carriers int
		non      int
	}{
		{10, 0.5, 5, 5},
		{7, 0.5, 3, 4},
		{3, 1.0 / 3, 1, 2},
		{640, 0.5, 320, 320},
		{176, 0.3, 52, 124},
		{5, 0, 0, 5},
		{5, 1, 5, 0},
		{0, 0.5, 0, 0},
	}

	for _, test := range tests {
		c, n := splitQuota(test.target, test.fraction)
		if c != test.carriers || n != test.non {
			t.Errorf("splitQuota(%d, %v) = %d, %d; expected %d, %d", test.target, test.fraction, c, n, test.carriers, test.non)
		}
	}
}

func TestBandQuotas(t *testing.T) {
	tests := []struct {
		sub      int
		bands    int
		expected []int
	}{
		{14, 7, []int{2, 2, 2, 2, 2, 2, 2}},
		{10, 7, []int{2, 2, 2, 1, 1, 1, 1}},
		{3, 7, []int{1, 1, 1, 1, 1, 1, 1}},
		{0, 3, []int{1, 1, 1}},
		{5, 1, []int{5}},
		{5, 0, nil},
	}

	for _, test := range tests {
		if diff := cmp.Diff(test.expected, bandQuotas(test.sub, test.bands)); diff != "" {
			t.Errorf("bandQuotas(%d, %d) (-want +got):\n%s", test.sub, test.bands, diff)
		}
	}
}

func TestFloorOfOne(t *testing.T) {
	// One carrier in each default band.
	tbl := cohort(people("C", "e4/e4", "Female", 37, 42, 47, 52, 57, 62, 67))

	cfg := DefaultConfig()
	cfg.TargetFemaleCount = 3
	cfg.TargetMaleCount = 0
	cfg.CarrierFraction = 1

	res, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if got := res.Female.Len(); got != 7 {
		t.Fatalf("Expected every band to contribute one record (7), got %d", got)
	}
	if s := res.Female.Summary(); s.Selected <= s.Target {
		t.Fatalf("Expected over-allocation, got %+v", s)
	}
}

func TestAgeBandSelection(t *testing.T) {
	// Two bands; carriers quota 4 -> 2 per band. The young band is
	// undersupplied and the shortfall is not borrowed from the older one.
	tbl := cohort(
		people("Y", "e3/e4", "F", 36),
		people("O", "e3/e4", "F", 41, 42, 43, 44),
		people("X", "e3/e4", "F", 80),
	)

	cfg := unbanded(4, 0, 1)
	cfg.FemaleAgeBands = []AgeBand{{35, 39}, {40, 44}}

	res, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Y0", "O0", "O1"}
	if diff := cmp.Diff(want, ids(res.Female.Records())); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestBandBoundsAreInclusive(t *testing.T) {
	tbl := cohort(people("P", "e3/e3", "M", 34, 35, 39, 40))

	cfg := unbanded(0, 4, 0)
	cfg.MaleAgeBands = []AgeBand{{35, 39}}

	res, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"P1", "P2"}
	if diff := cmp.Diff(want, ids(res.Male.Records())); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestOverlappingBandsDoNotDuplicate(t *testing.T) {
	tbl := cohort(people("P", "e3/e3", "F", 40, 41, 42))

	cfg := unbanded(6, 0, 0)
	cfg.FemaleAgeBands = []AgeBand{{35, 45}, {40, 50}}

	res, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}

	got := ids(res.Female.Records())
	want := []string{"P0", "P1", "P2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestExclusions(t *testing.T) {
	tbl := cohort(
		people("A", "e2/e3", "F", 50),
		people("B", "E2/E4", "F", 50),
		people("C", "Indeterminate", "F", 50),
		people("D", "e3/e4", "F", 50),
		people("E", "e3/e3", "F", 50),
		people("G", "", "F", 50),
	)

	res, err := Stratify(tbl, unbanded(10, 0, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Excluded != 3 || res.Eligible != 3 {
		t.Fatalf("Expected 3 excluded and 3 eligible, got %d and %d", res.Excluded, res.Eligible)
	}
	for _, rec := range res.Female.Records() {
		if strings.Contains(strings.ToLower(rec.Haplotype), "e2") || rec.Haplotype == "Indeterminate" {
			t.Fatalf("Excluded label %q was selected", rec.Haplotype)
		}
	}

	cfg := unbanded(10, 0, 0.5)
	cfg.ExcludeSecondaryCarriers = false
	res, err = Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Excluded != 1 || res.Eligible != 5 {
		t.Fatalf("Expected 1 excluded and 5 eligible when e2 is allowed, got %d and %d", res.Excluded, res.Eligible)
	}
	// e2/e4 counts as a carrier.
	if s := res.Female.Summary(); s.CarriersAvailable != 2 || s.NonCarriersAvailable != 3 {
		t.Fatalf("Unexpected availability %+v", s)
	}
}

// Only the exact unresolved label is dropped. Blank labels and other spellings
// stay eligible as non-carriers.
func TestBlankLabelsStayEligible(t *testing.T) {
	tbl := cohort(
		people("A", "e3/e4", "F", 50),
		people("B", "e3/e3", "F", 50),
		people("C", "Indeterminate", "F", 50),
		people("D", "e2/e3", "F", 50),
		people("E", "", "F", 50),
		people("F", "indeterminate", "F", 50),
		people("G", "e4/e4", "F", 50),
	)

	res, err := Stratify(tbl, unbanded(10, 0, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Excluded != 2 || res.Eligible != 5 {
		t.Fatalf("Expected 2 excluded and 5 eligible, got %d and %d", res.Excluded, res.Eligible)
	}

	s := res.Female.Summary()
	if s.CarriersAvailable != 2 || s.NonCarriersAvailable != 3 {
		t.Fatalf("Unexpected availability %+v", s)
	}
	if diff := cmp.Diff([]string{"A0", "G0", "B0", "E0", "F0"}, ids(res.Female.Records())); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestGenderAliases(t *testing.T) {
	tbl := tabular.Table{
		Header: []string{"Sample_ID", "APOE_Genotype", "Sex", "Age"},
		Rows: [][]string{
			{"S1", "e3/e3", "f", "50"},
			{"S2", "e3/e3", "FEMALE", "50"},
			{"S3", "e3/e3", "2", "50"},
			{"S4", "e3/e3", "m", "50"},
			{"S5", "e3/e3", "Male", "50"},
			{"S6", "e3/e3", "1", "50"},
			{"S7", "e3/e3", "U", "50"},
			{"S8", "e3/e3", "", "50"},
		},
	}

	res, err := Stratify(tbl, unbanded(10, 10, 0))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"S1", "S2", "S3"}, ids(res.Female.Records())); diff != "" {
		t.Errorf("Female (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"S4", "S5", "S6"}, ids(res.Male.Records())); diff != "" {
		t.Errorf("Male (-want +got):\n%s", diff)
	}
	if res.Excluded != 0 || res.Unassigned != 2 {
		t.Errorf("Unknown genders should be unassigned, not excluded: %+v", res.Summary())
	}
	if res.Header[2] != "gender" {
		t.Errorf("Expected the sex column to be exported as gender, got %q", res.Header[2])
	}
}

func TestArmOmission(t *testing.T) {
	tbl := cohort(people("F", "e3/e3", "F", 50, 51))

	res, err := Stratify(tbl, unbanded(10, 10, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Male != nil {
		t.Errorf("An arm with no members should be omitted")
	}
	if n := len(res.Arms()); n != 1 {
		t.Errorf("Expected 1 arm, got %d", n)
	}

	res, err = Stratify(tbl, unbanded(0, 10, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Female != nil || len(res.Arms()) != 0 || res.TotalSelected() != 0 {
		t.Errorf("Expected no arms, got %+v", res.Summary())
	}
}

func TestMissingColumns(t *testing.T) {
	tbl := tabular.Table{
		Header: []string{"sample_id", "apoe_genotype", "gender"},
		Rows:   [][]string{{"S1", "e3/e3", "F"}},
	}

	res, err := Stratify(tbl, DefaultConfig())
	if res != nil {
		t.Fatalf("Expected no partial result")
	}

	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected a ConfigurationError, got %v", err)
	}
	if !cerr.MissingField("age") || len(cerr.Missing) != 1 {
		t.Fatalf("Expected only age to be reported missing, got %v", cerr.Missing)
	}
	if !strings.Contains(cerr.Error(), "age") {
		t.Fatalf("Error text should name age: %s", cerr)
	}

	_, err = Stratify(tabular.Table{Header: []string{"something"}}, DefaultConfig())
	if !errors.As(err, &cerr) || len(cerr.Missing) != 4 {
		t.Fatalf("Expected all four fields missing, got %v", err)
	}
}

func TestBirthYear(t *testing.T) {
	tbl := tabular.Table{
		Header: []string{"iid", "haplotype_label", "sex", "year_of_birth"},
		Rows: [][]string{
			{"S1", "e3/e4", "F", "1975"},
			{"S2", "e3/e4", "F", "1980-06-01"},
			{"S3", "e3/e4", "F", "unknown"},
			{"S4", "e3/e4", "F", "1990"},
		},
	}

	cfg := unbanded(10, 0, 1)
	cfg.FemaleAgeBands = []AgeBand{{40, 50}}

	res, err := Stratifier{CurrentYear: 2025}.Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !res.AgeDerived {
		t.Fatalf("Expected ages to be derived")
	}

	recs := res.Female.Records()
	if diff := cmp.Diff([]string{"S1", "S2"}, ids(recs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if recs[0].Age.Int64 != 50 || recs[1].Age.Int64 != 45 {
		t.Fatalf("Unexpected ages %v, %v", recs[0].Age, recs[1].Age)
	}

	// Eligible but unplaceable: S3 has no age.
	if res.Eligible != 4 {
		t.Fatalf("Expected 4 eligible, got %d", res.Eligible)
	}

	cols := res.Columns()
	if cols[len(cols)-2] != "age" || cols[len(cols)-1] != "is_e4_carrier" {
		t.Fatalf("Unexpected export columns %v", cols)
	}
	row := res.Row(recs[0])
	if diff := cmp.Diff([]string{"S1", "e3/e4", "F", "1975", "50", "true"}, row); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestInvariants(t *testing.T) {
	var rows [][]string
	labels := []string{"e3/e4", "e3/e3", "e4/e4", "e2/e3", "Indeterminate", "e3/e3"}
	genders := []string{"F", "M", "2", "1", "x"}
	for i := 0; i < 500; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("S%03d", i),
			labels[i%len(labels)],
			genders[(i/3)%len(genders)],
			strconv.Itoa(30 + (i*7)%45),
		})
	}
	tbl := cohort(rows)
	var copied [][]string
	for _, row := range rows {
		copied = append(copied, append([]string(nil), row...))
	}
	original := cohort(copied)

	cfg := DefaultConfig()
	cfg.TargetFemaleCount = 60
	cfg.TargetMaleCount = 25

	first, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	seen := make(map[string]struct{})
	for _, arm := range first.Arms() {
		s := arm.Summary()
		if s.CarriersSelected > s.CarriersAvailable || s.NonCarriersSelected > s.NonCarriersAvailable {
			t.Errorf("%s arm selected more than its pool: %+v", arm.Label(), s)
		}
		if s.Selected != arm.Len() || s.Selected != s.CarriersSelected+s.NonCarriersSelected {
			t.Errorf("%s arm summary disagrees with its records: %+v", arm.Label(), s)
		}
		for _, rec := range arm.Records() {
			if _, dup := seen[rec.SampleID]; dup {
				t.Fatalf("Sample %s selected twice", rec.SampleID)
			}
			seen[rec.SampleID] = struct{}{}
		}
		total += arm.Len()
	}
	if total != first.TotalSelected() {
		t.Errorf("TotalSelected %d, sum of arms %d", first.TotalSelected(), total)
	}

	for i, arm := range first.Arms() {
		if diff := cmp.Diff(ids(arm.Records()), ids(second.Arms()[i].Records())); diff != "" {
			t.Errorf("Selection is not deterministic (-first +second):\n%s", diff)
		}
	}

	if diff := cmp.Diff(original, tbl); diff != "" {
		t.Errorf("Input table was modified (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.TargetFemaleCount = -1 },
		func(c *Config) { c.TargetMaleCount = -1 },
		func(c *Config) { c.CarrierFraction = 1.5 },
		func(c *Config) { c.CarrierFraction = -0.1 },
		func(c *Config) { c.MaleAgeBands = []AgeBand{{50, 40}} },
	}

	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "study.toml")
	body := `study_name = "Memory and Menopause"
target_female_count = 20
carrier_fraction = 0.25
male_age_bands = []

[[female_age_bands]]
lo = 40
hi = 49
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	expected := DefaultConfig()
	expected.StudyName = "Memory and Menopause"
	expected.TargetFemaleCount = 20
	expected.CarrierFraction = 0.25
	expected.MaleAgeBands = []AgeBand{}
	expected.FemaleAgeBands = []AgeBand{{40, 49}}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if cfg.Slug() != "memory_and_menopause" {
		t.Fatalf("Unexpected slug %q", cfg.Slug())
	}

	typo := filepath.Join(dir, "typo.toml")
	if err := os.WriteFile(typo, []byte("target_females = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(typo); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected unknown keys to be rejected, got %v", err)
	}
}

func TestExportRecallLists(t *testing.T) {
	tbl := cohort(
		people("F", "e3/e4", "F", 50, 52),
		people("M", "e3/e3", "M", 60),
	)

	cfg := unbanded(2, 1, 0.5)
	cfg.StudyName = "Pilot Study"

	res, err := Stratify(tbl, cfg)
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := ExportRecallLists(res, dir)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "pilot_study_female_recall_list.csv"),
		filepath.Join(dir, "pilot_study_male_recall_list.csv"),
		filepath.Join(dir, "pilot_study_recall_summary.txt"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	female, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	// One carrier requested; no non-carriers exist among the women.
	expected := "sample_id,apoe_genotype,gender,age,is_e4_carrier\nF0,e3/e4,F,50,true\n"
	if string(female) != expected {
		t.Fatalf("Unexpected female list:\n%s", female)
	}

	summary, err := os.ReadFile(paths[2])
	if err != nil {
		t.Fatal(err)
	}
	for _, fragment := range []string{"Study: Pilot Study", "Total selected: 2", "Female arm:", "  available_carriers: 2", "  median_age: 60.0"} {
		if !strings.Contains(string(summary), fragment) {
			t.Errorf("Summary is missing %q:\n%s", fragment, summary)
		}
	}
}
