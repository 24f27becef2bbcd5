package diplotype

import "testing"

func TestResolveStandard(t *testing.T) {
	for _, v := range []struct {
		RS429358, RS7412 string
		Expected         string
	}{
		{"TT", "TT", "e2/e2"},
		{"TT", "CC", "e3/e3"},
		{"CC", "CC", "e4/e4"},
		{"TT", "CT", "e2/e3"},
		{"TT", "TC", "e2/e3"},
		{"CT", "CC", "e3/e4"},
		{"TC", "CC", "e3/e4"},
		{"CT", "CT", "e2/e4"},
		{"TC", "CT", "e2/e4"},
		{"C/T", "c|c", "e3/e4"},
		{"t t", "cc", "e3/e3"},
		{"CC", "TT", Unresolved},
		{"", "CC", Unresolved},
		{"00", "00", Unresolved},
		{"AG", "CC", Unresolved},
	} {
		if got := Resolve(v.RS429358, v.RS7412); got != v.Expected {
			t.Errorf("Resolve(%q, %q) = %q, expected %q", v.RS429358, v.RS7412, got, v.Expected)
		}
	}
}

func TestResolveExtended(t *testing.T) {
	r := Resolver{Extended: true}
	for _, v := range []struct {
		RS429358, RS7412 string
		Expected         string
	}{
		{"CC", "TT", "e1/e1"},
		{"CT", "TT", "e1/e2"},
		{"CC", "TC", "e1/e4"},
		{"CT", "TC", Ambiguous},
		{"TT", "CC", "e3/e3"},
		{"CC", "CC", "e4/e4"},
		{"GG", "CC", Unresolved},
	} {
		if got := r.Resolve(v.RS429358, v.RS7412); got != v.Expected {
			t.Errorf("Extended Resolve(%q, %q) = %q, expected %q", v.RS429358, v.RS7412, got, v.Expected)
		}
	}
}

func TestFromDosage(t *testing.T) {
	for _, v := range []struct {
		D429, D7412 float64
		Expected    string
	}{
		{0, 0, "e3/e3"},
		{0, 2, "e2/e2"},
		{2, 0, "e4/e4"},
		{1, 0, "e3/e4"},
		{0, 1, "e2/e3"},
		{1, 1, "e2/e4"},
		{0.9, 0.1, "e3/e4"},
		// Half-to-even: 0.5 rounds to 0, 1.5 rounds to 2
		{0.5, 0, "e3/e3"},
		{1.5, 0, "e4/e4"},
		{3, 0, Unresolved},
		{-1, 0, Unresolved},
	} {
		if got, _, _ := FromDosage(v.D429, v.D7412); got != v.Expected {
			t.Errorf("FromDosage(%v, %v) = %q, expected %q", v.D429, v.D7412, got, v.Expected)
		}
	}
}

func TestFromDosageStrings(t *testing.T) {
	r := Resolver{}

	if got, g1, g2 := r.FromDosageStrings("bad", "data", "C", "T"); got != Unresolved || g1 != "bad" || g2 != "data" {
		t.Errorf("Unparseable dosages gave %q (%q, %q)", got, g1, g2)
	}

	if got, _, _ := r.FromDosageStrings("NA", "0", "C", "T"); got != Unresolved {
		t.Errorf("NA dosage gave %q", got)
	}

	if got, _, _ := r.FromDosageStrings("1", "0", "C", "T"); got != "e3/e4" {
		t.Errorf("Got %q, expected e3/e4", got)
	}

	// Counting the T allele of rs429358 and the C allele of rs7412 flips both.
	if got, gt429, gt7412 := r.FromDosageStrings("2", "2", "T", "C"); got != "e3/e3" || gt429 != "TT" || gt7412 != "CC" {
		t.Errorf("Flipped dosages gave %q (%s, %s), expected e3/e3 (TT, CC)", got, gt429, gt7412)
	}
}

func TestRiskProfile(t *testing.T) {
	for diplotype, expected := range map[string]string{
		"e2/e2":    "Reduced risk",
		"e2/e3":    "Reduced risk",
		"e3/e3":    "Population baseline",
		"e2/e4":    "Uncertain / mixed",
		"e3/e4":    "Increased risk",
		"e4/e4":    "Substantially increased risk",
		Unresolved: UnknownRisk,
		Ambiguous:  UnknownRisk,
	} {
		if got := RiskProfile(diplotype); got != expected {
			t.Errorf("RiskProfile(%q) = %q, expected %q", diplotype, got, expected)
		}
	}
}

func TestCarrierStatus(t *testing.T) {
	if !IsE4Carrier("e3/E4") || IsE4Carrier("e3/e3") {
		t.Error("IsE4Carrier is not case-insensitive substring matching")
	}
	if !IsE2Carrier("E2/e4") || IsE2Carrier("e4/e4") {
		t.Error("IsE2Carrier is not case-insensitive substring matching")
	}
	if !IsUnresolved("Indeterminate") || IsUnresolved("") || IsUnresolved("indeterminate") || IsUnresolved("e3/e3") {
		t.Error("IsUnresolved mismatch")
	}
}
