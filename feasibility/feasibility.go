// Package feasibility estimates how many genotyped participants a study
// could recruit, given the diplotypes it wants and those it must exclude.
package feasibility

import (
	"github.com/dsugurtuna/apoe-genotyping-toolkit/caller"
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
)

type Options struct {
	Study string
	// Targets are the diplotypes that count as eligible. Empty means every
	// diplotype that is not excluded.
	Targets []string
	Exclude []string
	// KeepIndeterminate stops unresolved calls from being excluded.
	KeepIndeterminate bool
	Notes             string
}

type Report struct {
	Study     string
	Total     int
	Eligible  int
	Excluded  int
	Targets   []string
	Exclusion []string
	Breakdown map[string]int
	Notes     string
}

// EligibilityRate is Eligible / Total, or 0 for an empty cohort.
func (r Report) EligibilityRate() float64 {
	if r.Total == 0 {
		return 0
	}

	return float64(r.Eligible) / float64(r.Total)
}

// Estimate counts results against opts. A diplotype that is both targeted and
// excluded is excluded.
func Estimate(results []caller.Result, opts Options) Report {
	study := opts.Study
	if study == "" {
		study = "Unnamed Study"
	}

	report := Report{
		Study:     study,
		Total:     len(results),
		Targets:   append([]string(nil), opts.Targets...),
		Exclusion: exclusions(opts),
		Breakdown: make(map[string]int),
		Notes:     opts.Notes,
	}

	excluded := toSet(report.Exclusion)
	targets := toSet(opts.Targets)

	for _, r := range results {
		report.Breakdown[r.Diplotype]++

		if _, ok := excluded[r.Diplotype]; ok {
			report.Excluded++
			continue
		}
		if _, ok := targets[r.Diplotype]; len(targets) == 0 || ok {
			report.Eligible++
		}
	}

	return report
}

// exclusions lists opts.Exclude without duplicates, followed by the
// unresolved label unless it is kept.
func exclusions(opts Options) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(label string) {
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}

	for _, label := range opts.Exclude {
		add(label)
	}
	if !opts.KeepIndeterminate {
		add(diplotype.Unresolved)
	}

	return out
}

func toSet(labels []string) map[string]struct{} {
	out := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		out[label] = struct{}{}
	}

	return out
}
