package census

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SeriesStats describes one population column.
type SeriesStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Final  float64 `json:"final"`
}

// Summary aggregates a run of census records.
type Summary struct {
	Samples int         `json:"samples"`
	First   SeriesStats `json:"first"`
	Second  SeriesStats `json:"second"`
	Empty   SeriesStats `json:"empty"`

	// Extinct reports which species held no cell in the last record.
	FirstExtinct  bool   `json:"first_extinct"`
	SecondExtinct bool   `json:"second_extinct"`
	Last          Record `json:"last"`
}

// Summarize computes per-column statistics. The standard deviation is the
// sample one; with fewer than two records it is zero.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	first := make([]float64, len(records))
	second := make([]float64, len(records))
	empty := make([]float64, len(records))
	for i, r := range records {
		first[i] = float64(r.First)
		second[i] = float64(r.Second)
		empty[i] = float64(r.Empty)
	}

	last := records[len(records)-1]
	return Summary{
		Samples:       len(records),
		First:         series(first),
		Second:        series(second),
		Empty:         series(empty),
		FirstExtinct:  last.First == 0,
		SecondExtinct: last.Second == 0,
		Last:          last,
	}
}

func series(x []float64) SeriesStats {
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return SeriesStats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Final:  x[len(x)-1],
	}
}

func (s Summary) String() string {
	if s.Samples == 0 {
		return "no census samples"
	}
	return fmt.Sprintf("samples=%d first(mean=%.1f sd=%.1f min=%.0f max=%.0f final=%.0f) second(mean=%.1f sd=%.1f min=%.0f max=%.0f final=%.0f) murders=%d",
		s.Samples,
		s.First.Mean, s.First.StdDev, s.First.Min, s.First.Max, s.First.Final,
		s.Second.Mean, s.Second.StdDev, s.Second.Min, s.Second.Max, s.Second.Final,
		s.Last.Murders)
}
