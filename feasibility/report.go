package feasibility

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatReport renders the report as plain text for email or a ticket.
func FormatReport(r Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "APOE Feasibility Report: %s\n", r.Study)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Total genotyped samples  : %s\n", humanize.Comma(int64(r.Total)))
	fmt.Fprintf(&b, "Eligible participants    : %s\n", humanize.Comma(int64(r.Eligible)))
	fmt.Fprintf(&b, "Eligibility rate         : %.1f%%\n", 100*r.EligibilityRate())
	fmt.Fprintf(&b, "Excluded participants    : %s\n", humanize.Comma(int64(r.Excluded)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Target genotypes         : %s\n", joinOr(r.Targets, "All"))
	fmt.Fprintf(&b, "Exclusion criteria       : %s\n", joinOr(r.Exclusion, "None"))
	b.WriteString("\n")
	b.WriteString("Genotype breakdown:\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, label := range byCount(r.Breakdown) {
		count := r.Breakdown[label]
		pct := 0.0
		if r.Total > 0 {
			pct = 100 * float64(count) / float64(r.Total)
		}
		fmt.Fprintf(&b, "  %-15s  %8s  (%5.1f%%)\n", label, humanize.Comma(int64(count)), pct)
	}

	if r.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", r.Notes)
	}

	return b.String()
}

func joinOr(labels []string, empty string) string {
	if len(labels) == 0 {
		return empty
	}

	return strings.Join(labels, ", ")
}

// byCount orders labels by descending count, then alphabetically.
func byCount(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}

	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	return labels
}
