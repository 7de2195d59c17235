// Package trend fits mileage-over-time curves.
//
// Fit solves a polynomial least-squares problem over day ordinals with a QR
// factorization. Ordinals are centred on their mean and scaled into [-1, 1]
// before the Vandermonde matrix is built, which keeps a cubic over six-digit
// ordinals well conditioned. The requested degree is reduced when there are
// too few distinct dates to support it.
package trend

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"milelog/internal/faults"
	"milelog/internal/records"
)

// DefaultDegree is the polynomial degree used when no option overrides it.
const DefaultDegree = 3

// MinPoints is the smallest input Fit accepts.
const MinPoints = 2

// Point is one (time, mileage) observation.
type Point struct {
	At      time.Time
	Mileage float64
}

// Model is a fitted trend.
type Model struct {
	degree int
	center float64
	scale  float64
	coef   []float64
	fitted []float64
}

type options struct {
	degree          int
	residualFreedom bool
}

// Option configures Fit.
type Option func(*options)

// WithDegree sets the requested polynomial degree.
func WithDegree(degree int) Option {
	return func(o *options) {
		if degree > 0 {
			o.degree = degree
		}
	}
}

// WithResidualFreedom caps the degree at n-2 so the curve cannot pass
// through every point and leave all residuals at zero.
func WithResidualFreedom() Option {
	return func(o *options) { o.residualFreedom = true }
}

// Points converts records to fit input, preserving order.
func Points(items []records.Record) []Point {
	out := make([]Point, len(items))
	for i, r := range items {
		out[i] = Point{At: r.ObservedAt, Mileage: float64(r.Mileage)}
	}
	return out
}

// FitRecords fits a trend through the records' (date, mileage) pairs.
func FitRecords(items []records.Record, opts ...Option) (*Model, error) {
	return Fit(Points(items), opts...)
}

// Fit computes the least-squares polynomial through points. It returns an
// error wrapping faults.ErrInsufficientData for fewer than two points.
func Fit(points []Point, opts ...Option) (*Model, error) {
	o := options{degree: DefaultDegree}
	for _, opt := range opts {
		opt(&o)
	}
	n := len(points)
	if n < MinPoints {
		return nil, faults.Insufficient("trend", n, MinPoints)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	distinct := make(map[int64]struct{}, n)
	for i, p := range points {
		ord := records.DayOrdinal(p.At)
		distinct[ord] = struct{}{}
		xs[i] = float64(ord)
		ys[i] = p.Mileage
	}

	center, scale := normalization(xs)
	zs := make([]float64, n)
	for i, x := range xs {
		zs[i] = (x - center) / scale
	}

	degree := min(o.degree, len(distinct)-1)
	if o.residualFreedom {
		degree = min(degree, n-2)
	}
	degree = max(degree, 0)

	for ; degree >= 0; degree-- {
		coef, err := solve(zs, ys, degree)
		if err != nil {
			continue
		}
		m := &Model{degree: degree, center: center, scale: scale, coef: coef}
		m.fitted = make([]float64, n)
		for i, z := range zs {
			m.fitted[i] = m.eval(z)
		}
		return m, nil
	}
	return nil, fmt.Errorf("trend: least squares did not converge for %d points", n)
}

func normalization(xs []float64) (center, scale float64) {
	for _, x := range xs {
		center += x
	}
	center /= float64(len(xs))
	for _, x := range xs {
		scale = math.Max(scale, math.Abs(x-center))
	}
	if scale == 0 {
		scale = 1
	}
	return center, scale
}

// solve fits coefficients c0..c_degree of sum(c_k z^k) by QR.
func solve(zs, ys []float64, degree int) ([]float64, error) {
	n := len(zs)
	cols := degree + 1
	A := mat.NewDense(n, cols, nil)
	for i, z := range zs {
		v := 1.0
		for k := 0; k < cols; k++ {
			A.Set(i, k, v)
			v *= z
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), ys...))

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return nil, err
	}
	coef := make([]float64, cols)
	for k := range coef {
		coef[k] = params.AtVec(k)
	}
	return coef, nil
}

func (m *Model) eval(z float64) float64 {
	// Horner
	y := 0.0
	for k := len(m.coef) - 1; k >= 0; k-- {
		y = y*z + m.coef[k]
	}
	return y
}

// PredictOrdinal evaluates the trend at a day ordinal.
func (m *Model) PredictOrdinal(ordinal float64) float64 {
	return m.eval((ordinal - m.center) / m.scale)
}

// Predict evaluates the trend at the calendar date of t.
func (m *Model) Predict(t time.Time) float64 {
	return m.PredictOrdinal(float64(records.DayOrdinal(t)))
}

// Values returns fitted values aligned with the input points.
func (m *Model) Values() []float64 {
	return append([]float64(nil), m.fitted...)
}

// Degree returns the degree actually fitted.
func (m *Model) Degree() int { return m.degree }

// Residuals returns mileage minus trend for each point, aligned with input.
func (m *Model) Residuals(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Mileage - m.Predict(p.At)
	}
	return out
}
