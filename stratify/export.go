package stratify

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
)

// Columns is the header of an exported recall list: the source columns, then
// age when it was derived from a birth year, then is_e4_carrier.
func (r *Result) Columns() []string {
	out := append([]string(nil), r.Header...)
	if r.AgeDerived {
		out = append(out, "age")
	}

	return append(out, "is_e4_carrier")
}

// Row is rec formatted for export under r.Columns().
func (r *Result) Row(rec Record) []string {
	out := make([]string, len(r.Header), len(r.Header)+2)
	copy(out, rec.Fields)
	if r.AgeDerived {
		age := ""
		if rec.Age.Valid {
			age = strconv.FormatInt(rec.Age.Int64, 10)
		}
		out = append(out, age)
	}

	return append(out, strconv.FormatBool(rec.Carrier))
}

// ExportRecallLists writes <slug>_female_recall_list.csv,
// <slug>_male_recall_list.csv (for the arms that exist) and
// <slug>_recall_summary.txt into dir, creating it if needed. It returns the
// paths written.
func ExportRecallLists(r *Result, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pfx.Err(err)
	}

	slug := r.Config.Slug()
	var written []string

	for _, arm := range r.Arms() {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s_recall_list.csv", slug, strings.ToLower(arm.Label())))
		if err := r.writeArm(path, arm); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, slug+"_recall_summary.txt")
	if err := os.WriteFile(path, []byte(FormatSummary(r)), 0o644); err != nil {
		return written, pfx.Err(err)
	}

	return append(written, path), nil
}

func (r *Result) writeArm(path string, arm *Arm) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(r.Columns()); err != nil {
		return pfx.Err(err)
	}
	for _, rec := range arm.records {
		if err := w.Write(r.Row(rec)); err != nil {
			return pfx.Err(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return pfx.Err(err)
	}

	return f.Close()
}

// FormatSummary renders the run and each arm as plain text, with counts in
// SummaryKeys order followed by the age spread of the selected records.
func FormatSummary(r *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Study: %s\n", r.Config.StudyName)
	fmt.Fprintf(&b, "Eligible: %s\n", humanize.Comma(int64(r.Eligible)))
	fmt.Fprintf(&b, "Excluded: %s\n", humanize.Comma(int64(r.Excluded)))
	if r.Unassigned > 0 {
		fmt.Fprintf(&b, "Unknown gender: %s\n", humanize.Comma(int64(r.Unassigned)))
	}
	fmt.Fprintf(&b, "Total selected: %s\n", humanize.Comma(int64(r.TotalSelected())))

	for _, arm := range r.Arms() {
		fmt.Fprintf(&b, "\n%s arm:\n", arm.Label())
		summary := arm.Summary().Map()
		for _, k := range SummaryKeys {
			fmt.Fprintf(&b, "  %s: %s\n", k, humanize.Comma(int64(summary[k])))
		}

		if ages := selectedAges(arm); len(ages) > 0 {
			median, _ := stats.Median(ages)
			min, _ := stats.Min(ages)
			max, _ := stats.Max(ages)
			fmt.Fprintf(&b, "  median_age: %.1f\n", median)
			fmt.Fprintf(&b, "  age_range: %.0f-%.0f\n", min, max)
		}
	}

	return b.String()
}

func selectedAges(arm *Arm) stats.Float64Data {
	var out stats.Float64Data
	for _, rec := range arm.records {
		if rec.Age.Valid {
			out = append(out, float64(rec.Age.Int64))
		}
	}

	return out
}
