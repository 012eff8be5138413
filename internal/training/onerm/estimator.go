// Package onerm estimates one-rep maxes from sub-maximal sets.
//
// A single formula is unreliable across rep ranges, so Estimate averages
// six well-known ones (Epley, Brzycki, Lombardi, Mayhew, O'Conner, Wathan).
package onerm

import "math"

// MaxReps is the highest rep count the formulas are considered valid for.
const MaxReps = 30

func Epley(w float64, r int) float64 {
	return w * (1 + float64(r)/30)
}

// Brzycki is undefined at r >= 37; callers stay within MaxReps.
func Brzycki(w float64, r int) float64 {
	return w * (36 / (37 - float64(r)))
}

func Lombardi(w float64, r int) float64 {
	return w * math.Pow(float64(r), 0.10)
}

func Mayhew(w float64, r int) float64 {
	return w / (0.522 + 0.419*math.Exp(-0.055*float64(r)))
}

func OConner(w float64, r int) float64 {
	return w * (1 + 0.025*float64(r))
}

func Wathan(w float64, r int) float64 {
	return w / (0.4880 + 0.538*math.Exp(-0.075*float64(r)))
}

// Formulas maps formula names to their implementations.
var Formulas = map[string]func(w float64, r int) float64{
	"epley":    Epley,
	"brzycki":  Brzycki,
	"lombardi": Lombardi,
	"mayhew":   Mayhew,
	"oconner":  OConner,
	"wathan":   Wathan,
}

// Estimate returns the estimated one-rep max for a set of the given weight
// and reps, as the arithmetic mean of all formulas rounded to one decimal.
// A single rep is already a max attempt, so the weight is returned as-is.
// Non-positive weight or reps, or reps above MaxReps, yield ok=false and
// the set is to be skipped by the caller.
func Estimate(weight float64, reps int) (float64, bool) {
	if weight <= 0 || reps <= 0 || reps > MaxReps {
		return 0, false
	}
	if reps == 1 {
		return weight, true
	}

	var sum float64
	for _, formula := range Formulas {
		sum += formula(weight, reps)
	}
	return round1(sum / float64(len(Formulas))), true
}

// WeightAtPercentage returns the weight corresponding to the given
// percentage of a one-rep max.
func WeightAtPercentage(oneRM, pct float64) float64 {
	return oneRM * pct / 100
}

// RepsAtPercentage returns the expected achievable reps at the given
// percentage of a one-rep max (inverse Epley), never below 1 and capped
// at MaxReps. Non-positive percentages yield ok=false, same as Estimate
// rejects invalid sets.
func RepsAtPercentage(pct float64) (int, bool) {
	if pct <= 0 {
		return 0, false
	}
	reps := int(math.Round((100/pct - 1) * 30))
	if reps < 1 {
		return 1, true
	}
	if reps > MaxReps {
		return MaxReps, true
	}
	return reps, true
}

// TableRow is one line of a percentage-based training table.
type TableRow struct {
	Percentage float64 `json:"percentage"`
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
}

var tablePercentages = []float64{100, 95, 90, 85, 80, 75, 70, 65, 60, 55, 50}

// Table builds a percentage-based training table for the given one-rep max.
func Table(oneRM float64) []TableRow {
	rows := make([]TableRow, 0, len(tablePercentages))
	for _, pct := range tablePercentages {
		reps, ok := RepsAtPercentage(pct)
		if !ok {
			continue
		}
		rows = append(rows, TableRow{
			Percentage: pct,
			Weight:     round1(WeightAtPercentage(oneRM, pct)),
			Reps:       reps,
		})
	}
	return rows
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
