package stratify

// SummaryKeys is the fixed order in which arm summaries are reported.
var SummaryKeys = []string{
	"target",
	"selected",
	"e4_carriers",
	"non_carriers",
	"available_carriers",
	"available_non_carriers",
}

// Summary describes how well an arm met its target. Selected may be below
// Target when a stratum was undersupplied, or above it when there are more
// age bands than records asked for, since every band asks for at least one.
type Summary struct {
	Target               int
	Selected             int
	CarriersSelected     int
	NonCarriersSelected  int
	CarriersAvailable    int
	NonCarriersAvailable int
}

// Map returns the summary keyed by SummaryKeys.
func (s Summary) Map() map[string]int {
	return map[string]int{
		"target":                 s.Target,
		"selected":               s.Selected,
		"e4_carriers":            s.CarriersSelected,
		"non_carriers":           s.NonCarriersSelected,
		"available_carriers":     s.CarriersAvailable,
		"available_non_carriers": s.NonCarriersAvailable,
	}
}

// Arm is the selection for one gender. It is not modified after it is built.
type Arm struct {
	gender  Gender
	records []Record
	summary Summary
}

func (a *Arm) Gender() Gender {
	return a.gender
}

// Label is "Female" or "Male".
func (a *Arm) Label() string {
	return a.gender.String()
}

// Records returns the selected records, carriers first, each group in band
// order. The slice is a copy.
func (a *Arm) Records() []Record {
	return append([]Record(nil), a.records...)
}

func (a *Arm) Len() int {
	return len(a.records)
}

func (a *Arm) Summary() Summary {
	return a.summary
}

// Result is the outcome of one stratification run. Either arm may be nil.
type Result struct {
	Config Config

	Female *Arm
	Male   *Arm

	// Excluded counts records removed by the eligibility rules. Records of
	// unknown gender are not excluded; they are counted in Unassigned.
	Excluded   int
	Eligible   int
	Unassigned int

	// Header is the source table's header, used when exporting.
	Header []string
	// AgeDerived is set when ages were computed from a birth-year column.
	AgeDerived bool
}

// Arms returns the arms that exist, female first.
func (r *Result) Arms() []*Arm {
	var out []*Arm
	if r.Female != nil {
		out = append(out, r.Female)
	}
	if r.Male != nil {
		out = append(out, r.Male)
	}

	return out
}

func (r *Result) TotalSelected() int {
	total := 0
	for _, arm := range r.Arms() {
		total += arm.Len()
	}

	return total
}

// Summary is the run-level count summary.
func (r *Result) Summary() map[string]int {
	return map[string]int{
		"eligible":       r.Eligible,
		"excluded":       r.Excluded,
		"unassigned":     r.Unassigned,
		"total_selected": r.TotalSelected(),
	}
}
