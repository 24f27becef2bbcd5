// Package stratify builds recall lists from a labelled cohort. Each gender arm
// is filled to a target with a fixed share of e4 carriers, spread evenly over
// age bands. Selection is positional: the same table and config always give
// the same lists.
package stratify

import (
	"time"

	"github.com/dsugurtuna/apoe-genotyping-toolkit/tabular"
)

// Stratifier runs stratifications against a fixed reference year, used to
// turn birth years into ages. A zero CurrentYear means the current calendar
// year.
type Stratifier struct {
	CurrentYear int
}

// Stratify resolves the table's columns, applies the eligibility rules and
// selects each gender arm. A *ConfigurationError is returned, and nothing is
// selected, when a required column is missing. The table is not modified.
func (s Stratifier) Stratify(t tabular.Table, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	year := s.CurrentYear
	if year == 0 {
		year = time.Now().Year()
	}

	records, cols, err := resolve(t, year)
	if err != nil {
		return nil, err
	}

	eligible := filterEligible(records, cfg.ExcludeSecondaryCarriers)
	female, male := partitionByGender(eligible)

	return &Result{
		Config:     cfg,
		Female:     selectArm(Female, female, cfg.TargetFemaleCount, cfg.CarrierFraction, cfg.FemaleAgeBands),
		Male:       selectArm(Male, male, cfg.TargetMaleCount, cfg.CarrierFraction, cfg.MaleAgeBands),
		Excluded:   len(records) - len(eligible),
		Eligible:   len(eligible),
		Unassigned: len(eligible) - len(female) - len(male),
		Header:     exportHeader(t.Header, cols),
		AgeDerived: cols.ageFromBirthYear,
	}, nil
}

// Stratify runs a Stratifier for the current year.
func Stratify(t tabular.Table, cfg Config) (*Result, error) {
	return Stratifier{}.Stratify(t, cfg)
}

// exportHeader copies the source header, renaming a "sex" column to "gender".
func exportHeader(header []string, cols columns) []string {
	out := append([]string(nil), header...)
	if cols.gender >= 0 && cols.gender < len(out) && cols.genderName != "gender" {
		out[cols.gender] = "gender"
	}

	return out
}
