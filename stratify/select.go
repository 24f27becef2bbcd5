package stratify

import (
	"github.com/dsugurtuna/apoe-genotyping-toolkit/diplotype"
)

// filterEligible drops e2 carriers when excludeSecondary is set, and then any
// record whose label is unresolved. Carrier status is stamped on what
// remains.
func filterEligible(records []Record, excludeSecondary bool) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if excludeSecondary && diplotype.IsE2Carrier(rec.Haplotype) {
			continue
		}
		if diplotype.IsUnresolved(rec.Haplotype) {
			continue
		}

		rec.Carrier = diplotype.IsE4Carrier(rec.Haplotype)
		out = append(out, rec)
	}

	return out
}

// partitionByGender keeps input order within each arm. Records of unknown
// gender are dropped.
func partitionByGender(records []Record) (female, male []Record) {
	for _, rec := range records {
		switch rec.Gender {
		case Female:
			female = append(female, rec)
		case Male:
			male = append(male, rec)
		}
	}

	return female, male
}

func partitionByCarrier(records []Record) (carriers, nonCarriers []Record) {
	for _, rec := range records {
		if rec.Carrier {
			carriers = append(carriers, rec)
		} else {
			nonCarriers = append(nonCarriers, rec)
		}
	}

	return carriers, nonCarriers
}

// splitQuota divides an arm target between carriers and non-carriers. The
// carrier share is rounded down.
func splitQuota(target int, fraction float64) (carriers, nonCarriers int) {
	carriers = int(float64(target) * fraction)
	if carriers > target {
		carriers = target
	}

	return carriers, target - carriers
}

// bandQuotas spreads subTarget over n bands. Every band asks for at least
// one record, so the total can exceed subTarget when subTarget < n. Any
// remainder goes one apiece to the leading bands.
func bandQuotas(subTarget, n int) []int {
	if n == 0 {
		return nil
	}

	perBand := subTarget / n
	if perBand < 1 {
		perBand = 1
	}
	remainder := subTarget - perBand*n

	quotas := make([]int, n)
	for i := range quotas {
		quotas[i] = perBand
		if i < remainder {
			quotas[i]++
		}
	}

	return quotas
}

// selectGroup picks up to subTarget records from pool. With no bands it takes
// the head of the pool. With bands, each band takes the first records, in
// pool order, whose age falls inside it, up to its quota. Shortfalls are not
// made up from other bands. A record is taken at most once even when bands
// overlap.
func selectGroup(pool []Record, subTarget int, bands []AgeBand) []Record {
	if len(bands) == 0 {
		n := subTarget
		if n > len(pool) {
			n = len(pool)
		}
		if n < 0 {
			n = 0
		}
		return append([]Record(nil), pool[:n]...)
	}

	taken := make([]bool, len(pool))
	var out []Record
	for i, quota := range bandQuotas(subTarget, len(bands)) {
		band := bands[i]
		got := 0
		for j, rec := range pool {
			if got >= quota {
				break
			}
			if taken[j] || !rec.Age.Valid || !band.Contains(rec.Age.Int64) {
				continue
			}
			taken[j] = true
			out = append(out, rec)
			got++
		}
	}

	return out
}

// selectArm builds one gender arm. It returns nil when the arm has no members
// or no target.
func selectArm(gender Gender, members []Record, target int, fraction float64, bands []AgeBand) *Arm {
	if len(members) == 0 || target <= 0 {
		return nil
	}

	carriers, nonCarriers := partitionByCarrier(members)
	nCarrier, nNon := splitQuota(target, fraction)

	chosenCarriers := selectGroup(carriers, nCarrier, bands)
	chosenNon := selectGroup(nonCarriers, nNon, bands)

	records := make([]Record, 0, len(chosenCarriers)+len(chosenNon))
	records = append(records, chosenCarriers...)
	records = append(records, chosenNon...)

	return &Arm{
		gender:  gender,
		records: records,
		summary: Summary{
			Target:               target,
			Selected:             len(records),
			CarriersSelected:     len(chosenCarriers),
			NonCarriersSelected:  len(chosenNon),
			CarriersAvailable:    len(carriers),
			NonCarriersAvailable: len(nonCarriers),
		},
	}
}
