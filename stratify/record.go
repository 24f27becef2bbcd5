package stratify

import (
	"math"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
	"gopkg.in/guregu/null.v3"
)

type Gender int

const (
	GenderUnknown Gender = iota
	Female
	Male
)

func (g Gender) String() string {
	switch g {
	case Female:
		return "Female"
	case Male:
		return "Male"
	}

	return "Unknown"
}

// ParseGender accepts F/FEMALE/2 and M/MALE/1 in any case. 1 and 2 follow the
// PLINK sex coding.
func ParseGender(value string) Gender {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "F", "FEMALE", "2":
		return Female
	case "M", "MALE", "1":
		return Male
	}

	return GenderUnknown
}

// Record is one cohort member after column resolution.
type Record struct {
	SampleID  string
	Haplotype string
	Gender    Gender
	// Age is invalid when the age (or birth-year) cell could not be read. Such
	// records stay eligible but fall into no age band.
	Age null.Int
	// Carrier is set during eligibility filtering.
	Carrier bool

	// Fields is a copy of the source row, padded to the header width.
	Fields []string
}

// Candidate column names, in order of preference. Matching is
// case-insensitive.
var (
	sampleColumns    = []string{"sample_id", "iid", "eid"}
	haplotypeColumns = []string{"apoe_genotype", "haplotype_label", "apoe_diplotype", "apoe"}
	genderColumns    = []string{"gender", "sex"}
	ageColumns       = []string{"age"}
	birthYearColumns = []string{"year_of_birth", "birth_year", "yob", "date_of_birth", "dob"}
)

// columns are resolved once per table.
type columns struct {
	sample, haplotype, gender, age int
	genderName                     string
	// ageFromBirthYear is set when age must be computed from a birth-year
	// column; age then indexes that column.
	ageFromBirthYear bool
}

func resolveColumns(t tabular.Table) (columns, error) {
	var c columns
	var missing []string

	if c.sample, _ = t.IndexAny(sampleColumns...); c.sample < 0 {
		missing = append(missing, "sample_id")
	}
	if c.haplotype, _ = t.IndexAny(haplotypeColumns...); c.haplotype < 0 {
		missing = append(missing, "apoe_genotype")
	}
	if c.gender, c.genderName = t.IndexAny(genderColumns...); c.gender < 0 {
		missing = append(missing, "gender (or sex)")
	}
	if c.age, _ = t.IndexAny(ageColumns...); c.age < 0 {
		if c.age, _ = t.IndexAny(birthYearColumns...); c.age >= 0 {
			c.ageFromBirthYear = true
		} else {
			missing = append(missing, "age (or year_of_birth)")
		}
	}

	if len(missing) > 0 {
		return c, &ConfigurationError{Missing: missing}
	}

	return c, nil
}

// resolve turns every row of t into a Record. t is not modified.
func resolve(t tabular.Table, currentYear int) ([]Record, columns, error) {
	cols, err := resolveColumns(t)
	if err != nil {
		return nil, cols, err
	}

	records := make([]Record, 0, t.Len())
	for i := range t.Rows {
		fields := make([]string, len(t.Header))
		copy(fields, t.Rows[i])

		rec := Record{
			SampleID:  strings.TrimSpace(t.Value(i, cols.sample)),
			Haplotype: strings.TrimSpace(t.Value(i, cols.haplotype)),
			Gender:    ParseGender(t.Value(i, cols.gender)),
			Fields:    fields,
		}

		if cols.ageFromBirthYear {
			rec.Age = ageFromBirthYear(t.Value(i, cols.age), currentYear)
		} else {
			rec.Age = parseAge(t.Value(i, cols.age))
		}

		records = append(records, rec)
	}

	return records, cols, nil
}

// parseAge reads whole or fractional years; fractions are truncated.
func parseAge(value string) null.Int {
	value = strings.TrimSpace(value)
	if value == "" {
		return null.Int{}
	}

	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return null.IntFrom(v)
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Int{}
	}

	return null.IntFrom(int64(math.Trunc(f)))
}

// ageFromBirthYear accepts a bare year or any date dateparse understands.
func ageFromBirthYear(value string, currentYear int) null.Int {
	value = strings.TrimSpace(value)
	if value == "" {
		return null.Int{}
	}

	year, err := strconv.Atoi(value)
	if err != nil {
		if f, ferr := strconv.ParseFloat(value, 64); ferr == nil && f == math.Trunc(f) && f > 0 && f < 10000 {
			year = int(f)
		} else {
			parsed, perr := dateparse.ParseAny(value)
			if perr != nil {
				return null.Int{}
			}
			year = parsed.Year()
		}
	}

	return null.IntFrom(int64(currentYear - year))
}
