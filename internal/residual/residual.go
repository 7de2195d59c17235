// Package residual separates the readings of one vehicle class into the
// physical vehicles that produced them.
//
// All readings of a class are fitted with a single trend. Each vehicle tends
// to sit consistently above or below that curve, so the residuals form two
// groups. They are split with a seeded 2-means and the groups are mapped to
// identities by mean residual: the lower mean receives Labels.Lower.
package residual

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"milelog/internal/faults"
	"milelog/internal/fleet"
	"milelog/internal/records"
	"milelog/internal/trend"
)

const (
	DefaultSeed          uint64 = 0
	DefaultRestarts             = 10
	DefaultMaxIterations        = 300
)

// MinRecords is the smallest class Classify will split.
const MinRecords = 2

// Options tunes clustering.
type Options struct {
	Seed          uint64
	Restarts      int
	MaxIterations int
	// Signed clusters on mileage minus trend instead of its absolute value.
	Signed bool
	// Degree is the trend degree used by Classify.
	Degree int
}

// DefaultOptions returns the built-in clustering settings.
func DefaultOptions() Options {
	return Options{
		Seed:          DefaultSeed,
		Restarts:      DefaultRestarts,
		MaxIterations: DefaultMaxIterations,
		Degree:        trend.DefaultDegree,
	}
}

// Result carries the per-record outcome, aligned with the input.
type Result struct {
	Identities []records.Identity
	Residuals  []float64
	// Groups holds 0 for the lower cluster and 1 for the upper one.
	Groups    []int
	LowerMean float64
	UpperMean float64
	Inertia   float64
	Degree    int
}

// Counts returns how many records were assigned to each identity.
func (r Result) Counts() map[records.Identity]int {
	out := make(map[records.Identity]int, 2)
	for _, id := range r.Identities {
		out[id]++
	}
	return out
}

// Classify fits one trend through items and splits them by residual.
// On ErrInsufficientData the result still lists every record as unknown.
func Classify(items []records.Record, labels fleet.Labels, opts Options) (Result, error) {
	if len(items) < MinRecords {
		return unknownResult(len(items)), faults.Insufficient("residual", len(items), MinRecords)
	}
	degree := opts.Degree
	if degree <= 0 {
		degree = trend.DefaultDegree
	}
	model, err := trend.FitRecords(items, trend.WithDegree(degree), trend.WithResidualFreedom())
	if err != nil {
		return unknownResult(len(items)), err
	}
	res, err := ClassifyValues(items, model.Values(), labels, opts)
	res.Degree = model.Degree()
	return res, err
}

// ClassifyValues splits items using trend values already fitted over them.
func ClassifyValues(items []records.Record, values []float64, labels fleet.Labels, opts Options) (Result, error) {
	n := len(items)
	if len(values) != n {
		return unknownResult(n), fmt.Errorf("residual: %d records but %d trend values", n, len(values))
	}
	if !labels.Lower.Known() || !labels.Upper.Known() {
		return unknownResult(n), faults.Wrap(faults.ErrValidation, "residual", "labels", "both lower and upper identities are required", nil)
	}
	if n < MinRecords {
		return unknownResult(n), faults.Insufficient("residual", n, MinRecords)
	}

	residuals := make([]float64, n)
	for i, r := range items {
		d := float64(r.Mileage) - values[i]
		if !opts.Signed {
			d = math.Abs(d)
		}
		residuals[i] = d
	}
	if collapsed(residuals) {
		res := unknownResult(n)
		res.Residuals = residuals
		return res, faults.Wrap(faults.ErrInsufficientData, "residual", "", "residuals do not form two groups", nil)
	}

	groups, centers, inertia := twoMeans(residuals, opts)
	lower := 0
	if centers[1] < centers[0] {
		lower = 1
	}

	res := Result{
		Identities: make([]records.Identity, n),
		Residuals:  residuals,
		Groups:     make([]int, n),
		LowerMean:  centers[lower],
		UpperMean:  centers[1-lower],
		Inertia:    inertia,
	}
	for i, g := range groups {
		if g == lower {
			res.Groups[i] = 0
			res.Identities[i] = labels.Lower
		} else {
			res.Groups[i] = 1
			res.Identities[i] = labels.Upper
		}
	}
	return res, nil
}

func unknownResult(n int) Result {
	ids := make([]records.Identity, n)
	for i := range ids {
		ids[i] = records.IdentityUnknown
	}
	return Result{Identities: ids}
}

// spreadTolerance is the relative spread below which residuals count as one
// value. Fits leave rounding noise far larger than exact float equality.
const spreadTolerance = 1e-9

// collapsed reports whether xs holds a single value up to rounding.
func collapsed(xs []float64) bool {
	spread := floats.Max(xs) - floats.Min(xs)
	scale := math.Max(1, math.Abs(floats.Sum(xs)/float64(len(xs))))
	return spread <= spreadTolerance*scale
}

// twoMeans runs seeded k-means++ with k=2 over xs and keeps the restart
// with the smallest inertia. xs must contain at least two distinct values.
func twoMeans(xs []float64, opts Options) ([]int, [2]float64, float64) {
	restarts := max(opts.Restarts, 1)
	iterations := max(opts.MaxIterations, 1)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var (
		bestGroups  []int
		bestCenters [2]float64
		bestInertia = math.Inf(1)
	)
	for range restarts {
		centers := seedCenters(xs, rng)
		groups, centers := lloyd(xs, centers, iterations)
		inertia := 0.0
		for i, x := range xs {
			d := x - centers[groups[i]]
			inertia += d * d
		}
		if inertia < bestInertia {
			bestGroups, bestCenters, bestInertia = groups, centers, inertia
		}
	}
	return bestGroups, bestCenters, bestInertia
}

// seedCenters picks the first center uniformly and the second with
// probability proportional to squared distance from the first.
func seedCenters(xs []float64, rng *rand.Rand) [2]float64 {
	first := xs[rng.IntN(len(xs))]
	weights := make([]float64, len(xs))
	total := 0.0
	for i, x := range xs {
		d := x - first
		weights[i] = d * d
		total += weights[i]
	}
	target := rng.Float64() * total
	second := first
	for i, w := range weights {
		if w == 0 {
			continue
		}
		second = xs[i]
		if target < w {
			break
		}
		target -= w
	}
	return [2]float64{first, second}
}

func lloyd(xs []float64, centers [2]float64, iterations int) ([]int, [2]float64) {
	groups := make([]int, len(xs))
	for i := range groups {
		groups[i] = -1
	}
	for range iterations {
		changed := false
		for i, x := range xs {
			g := 0
			if math.Abs(x-centers[1]) < math.Abs(x-centers[0]) {
				g = 1
			}
			if groups[i] != g {
				groups[i] = g
				changed = true
			}
		}
		if !changed {
			break
		}
		var sums [2]float64
		var counts [2]int
		for i, x := range xs {
			sums[groups[i]] += x
			counts[groups[i]]++
		}
		for g := range centers {
			if counts[g] > 0 {
				centers[g] = sums[g] / float64(counts[g])
			}
		}
	}
	return groups, centers
}
