package priority

import "strings"

// Band is a display grouping derived from a score on read; it is never stored.
type Band string

const (
	BandCritical Band = "critical"
	BandHigh     Band = "high"
	BandMedium   Band = "medium"
	BandLow      Band = "low"
)

// Threshold maps scores strictly above Above to Band.
type Threshold struct {
	Above int
	Band  Band
}

// BandTable orders thresholds from highest to lowest, falling back to Floor.
type BandTable struct {
	Name       string
	Thresholds []Threshold
	Floor      Band
}

// FourBand is the canonical table used by the API and SLA multipliers.
var FourBand = BandTable{
	Name: "four",
	Thresholds: []Threshold{
		{Above: 80, Band: BandCritical},
		{Above: 60, Band: BandHigh},
		{Above: 40, Band: BandMedium},
	},
	Floor: BandLow,
}

// ThreeBand is the legacy dashboard grouping.
var ThreeBand = BandTable{
	Name: "three",
	Thresholds: []Threshold{
		{Above: 70, Band: BandHigh},
		{Above: 40, Band: BandMedium},
	},
	Floor: BandLow,
}

// Band returns the band for score.
func (t BandTable) Band(score int) Band {
	for _, th := range t.Thresholds {
		if score > th.Above {
			return th.Band
		}
	}
	return t.Floor
}

// Bands lists every band the table can produce.
func (t BandTable) Bands() []Band {
	out := make([]Band, 0, len(t.Thresholds)+1)
	for _, th := range t.Thresholds {
		out = append(out, th.Band)
	}
	return append(out, t.Floor)
}

// TableByName resolves a configured banding table, defaulting to FourBand.
func TableByName(name string) BandTable {
	if strings.EqualFold(strings.TrimSpace(name), ThreeBand.Name) {
		return ThreeBand
	}
	return FourBand
}
