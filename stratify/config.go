package stratify

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
)

// AgeBand is a closed interval of ages, [Lo, Hi].
type AgeBand struct {
	Lo int `toml:"lo"`
	Hi int `toml:"hi"`
}

func (b AgeBand) Contains(age int64) bool {
	return age >= int64(b.Lo) && age <= int64(b.Hi)
}

func (b AgeBand) String() string {
	return fmt.Sprintf("%d-%d", b.Lo, b.Hi)
}

// Config describes one study's recall targets. Age bands are taken as given:
// overlaps and gaps are not checked, a gap just means fewer candidates, and an
// empty band list turns age balancing off for that arm.
type Config struct {
	StudyName                string    `toml:"study_name"`
	TargetFemaleCount        int       `toml:"target_female_count"`
	TargetMaleCount          int       `toml:"target_male_count"`
	CarrierFraction          float64   `toml:"carrier_fraction"`
	ExcludeSecondaryCarriers bool      `toml:"exclude_e2_carriers"`
	FemaleAgeBands           []AgeBand `toml:"female_age_bands"`
	MaleAgeBands             []AgeBand `toml:"male_age_bands"`
}

// DefaultAgeBands are seven five-year bands from 35 to 69.
func DefaultAgeBands() []AgeBand {
	return []AgeBand{
		{35, 39},
		{40, 44},
		{45, 49},
		{50, 54},
		{55, 59},
		{60, 64},
		{65, 69},
	}
}

// DefaultConfig mirrors the menopause-staging recall the tool was first used
// for: 640 women and 176 men, half of each arm e4 carriers, e2 carriers
// excluded.
func DefaultConfig() Config {
	return Config{
		StudyName:                "Unnamed Study",
		TargetFemaleCount:        640,
		TargetMaleCount:          176,
		CarrierFraction:          0.5,
		ExcludeSecondaryCarriers: true,
		FemaleAgeBands:           DefaultAgeBands(),
		MaleAgeBands:             DefaultAgeBands(),
	}
}

// Validate rejects targets and fractions that cannot be satisfied by any
// cohort, and bands whose bounds are reversed.
func (c Config) Validate() error {
	if c.TargetFemaleCount < 0 {
		return fmt.Errorf("%w: target_female_count is %d", ErrInvalidConfig, c.TargetFemaleCount)
	}
	if c.TargetMaleCount < 0 {
		return fmt.Errorf("%w: target_male_count is %d", ErrInvalidConfig, c.TargetMaleCount)
	}
	if math.IsNaN(c.CarrierFraction) || c.CarrierFraction < 0 || c.CarrierFraction > 1 {
		return fmt.Errorf("%w: carrier_fraction %v is outside [0, 1]", ErrInvalidConfig, c.CarrierFraction)
	}
	for arm, bands := range map[string][]AgeBand{"female": c.FemaleAgeBands, "male": c.MaleAgeBands} {
		for _, b := range bands {
			if b.Lo > b.Hi {
				return fmt.Errorf("%w: %s age band %d-%d has lo > hi", ErrInvalidConfig, arm, b.Lo, b.Hi)
			}
		}
	}

	return nil
}

// Slug is the study name lower-cased with spaces replaced by underscores, for
// use in file names.
func (c Config) Slug() string {
	return strings.ToLower(strings.ReplaceAll(c.StudyName, " ", "_"))
}

// LoadConfig decodes a TOML study file on top of DefaultConfig, so that keys
// absent from the file keep their defaults. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return cfg, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}
