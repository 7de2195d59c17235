// Package predict suggests a vehicle identity for a new reading from the
// readings whose identity is already known.
package predict

import (
	"cmp"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"

	"milelog/internal/faults"
	"milelog/internal/records"
)

// DefaultNeighbors is k when none is configured.
const DefaultNeighbors = 3

// Neighbor is one training record and its distance from the query.
type Neighbor struct {
	Record   records.Record
	Distance float64
}

// Prediction is the outcome of a k-NN vote.
type Prediction struct {
	Identity  records.Identity
	Votes     map[records.Identity]int
	Neighbors []Neighbor
	K         int
}

// Classifier is a k-nearest-neighbour model over (day ordinal, mileage).
// Features are not scaled.
type Classifier struct {
	k        int
	examples []records.Record
	features [][]float64
}

// New trains a classifier on the resolved records in items. When class is
// known, only records of that class are used.
func New(items []records.Record, class records.Class, k int) (*Classifier, error) {
	if k <= 0 {
		k = DefaultNeighbors
	}
	training := records.Resolved(items)
	if class.Known() {
		training = records.FilterClass(training, class)
	}
	if len(training) == 0 {
		return nil, faults.Insufficient("predict", 0, 1)
	}
	c := &Classifier{k: k, examples: training, features: make([][]float64, len(training))}
	for i, r := range training {
		c.features[i] = features(r.ObservedAt, float64(r.Mileage))
	}
	return c, nil
}

// Size returns the number of training examples.
func (c *Classifier) Size() int { return len(c.examples) }

// Predict votes among the k nearest training records. k is reduced when
// fewer examples exist. Ties go to the tied identity whose member is
// nearest to the query.
func (c *Classifier) Predict(mileage float64, at time.Time) Prediction {
	query := features(at, mileage)
	neighbors := make([]Neighbor, len(c.examples))
	for i, r := range c.examples {
		neighbors[i] = Neighbor{Record: r, Distance: floats.Distance(query, c.features[i], 2)}
	}
	slices.SortStableFunc(neighbors, func(a, b Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	k := min(c.k, len(neighbors))
	neighbors = neighbors[:k]

	votes := make(map[records.Identity]int, k)
	best := 0
	for _, n := range neighbors {
		votes[n.Record.Identity]++
		best = max(best, votes[n.Record.Identity])
	}
	var winner records.Identity
	for _, n := range neighbors {
		if votes[n.Record.Identity] == best {
			winner = n.Record.Identity
			break
		}
	}
	return Prediction{Identity: winner, Votes: votes, Neighbors: neighbors, K: k}
}

// Predict trains on items and classifies a single reading.
func Predict(items []records.Record, class records.Class, k int, mileage float64, at time.Time) (Prediction, error) {
	c, err := New(items, class, k)
	if err != nil {
		return Prediction{Identity: records.IdentityUnknown}, err
	}
	return c.Predict(mileage, at), nil
}

func features(at time.Time, mileage float64) []float64 {
	return []float64{float64(records.DayOrdinal(at)), mileage}
}
