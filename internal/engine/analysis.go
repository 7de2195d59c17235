package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"milelog/internal/extrapolate"
	"milelog/internal/faults"
	"milelog/internal/logging"
	"milelog/internal/metrics"
	"milelog/internal/predict"
	"milelog/internal/records"
	"milelog/internal/residual"
	"milelog/internal/trend"
)

// FitTrend fits the configured trend through items.
func (e *Engine) FitTrend(items []records.Record) (*trend.Model, error) {
	start := time.Now()
	model, err := trend.FitRecords(items, trend.WithDegree(e.cfg.Trend.Degree))
	if err != nil {
		return nil, err
	}
	metrics.ObserveFit(time.Since(start))
	return model, nil
}

// TrendPoint is one record with its fitted value.
type TrendPoint struct {
	Record   records.Record `json:"record"`
	Fitted   float64        `json:"fitted"`
	Residual float64        `json:"residual"`
}

// TrendReport is the trend of one selection.
type TrendReport struct {
	Selection string       `json:"selection"`
	Degree    int          `json:"degree"`
	Points    []TrendPoint `json:"points"`
}

// TrendFor fits the trend of the selected stored records. Points are in
// chronological order.
func (e *Engine) TrendFor(ctx context.Context, sel Selection) (TrendReport, error) {
	items, err := e.LoadSelection(ctx, sel)
	if err != nil {
		return TrendReport{}, err
	}
	items = records.SortChronological(items)
	model, err := e.FitTrend(items)
	if err != nil {
		return TrendReport{}, err
	}
	report := TrendReport{Selection: sel.String(), Degree: model.Degree(), Points: make([]TrendPoint, len(items))}
	for i, v := range model.Values() {
		report.Points[i] = TrendPoint{Record: items[i], Fitted: v, Residual: float64(items[i].Mileage) - v}
	}
	return report, nil
}

// ResidualOptions converts the clustering configuration.
func (e *Engine) ResidualOptions() residual.Options {
	return residual.Options{
		Seed:          e.cfg.Clustering.Seed,
		Restarts:      e.cfg.Clustering.Restarts,
		MaxIterations: e.cfg.Clustering.MaxIterations,
		Signed:        e.cfg.Clustering.SignedResiduals,
		Degree:        e.cfg.Trend.Degree,
	}
}

// ClassifyResiduals splits items of class between the two vehicles of its
// residual group. All items must belong to class.
func (e *Engine) ClassifyResiduals(items []records.Record, class records.Class) (residual.Result, error) {
	labels, ok := e.fleet.ResidualLabels(class)
	if !ok {
		return residual.Result{}, faults.Wrap(faults.ErrValidation, "engine", "classify residuals", fmt.Sprintf("no residual group configured for class %s", class), nil)
	}
	for _, r := range items {
		if r.Class != class {
			return residual.Result{}, faults.Wrap(faults.ErrValidation, "engine", "classify residuals", fmt.Sprintf("record %s is %s, not %s", r.Date(), r.Class, class), nil)
		}
	}
	start := time.Now()
	res, err := residual.Classify(items, labels, e.ResidualOptions())
	metrics.ObserveFit(time.Since(start))
	return res, err
}

// PredictIdentity suggests which vehicle produced a reading of mileage on
// day at. A known class restricts training to that class.
func (e *Engine) PredictIdentity(ctx context.Context, mileage int64, at time.Time, class records.Class) (predict.Prediction, error) {
	items, err := e.store.Load(ctx)
	if err != nil {
		return predict.Prediction{Identity: records.IdentityUnknown}, err
	}
	prediction, err := predict.Predict(items, class, e.cfg.Prediction.Neighbors, float64(mileage), at)
	switch {
	case errors.Is(err, faults.ErrInsufficientData):
		metrics.ObservePrediction("insufficient")
		e.logger.Info("no resolved records to predict from",
			logging.Class(string(class)),
			logging.Mileage(mileage))
		return prediction, err
	case err != nil:
		return prediction, err
	}
	metrics.ObservePrediction("predicted")
	e.logger.Debug("identity predicted",
		logging.Identity(string(prediction.Identity)),
		logging.Mileage(mileage),
		logging.Int("k", prediction.K))
	return prediction, nil
}

// Extrapolate samples the trend of items through target.
func (e *Engine) Extrapolate(items []records.Record, target time.Time) (extrapolate.Projection, error) {
	start := time.Now()
	p, err := extrapolate.Project(items, target, extrapolate.Options{
		StepMonths: e.cfg.Extrapolation.StepMonths,
		Degree:     e.cfg.Trend.Degree,
	})
	if err != nil {
		return p, err
	}
	metrics.ObserveFit(time.Since(start))
	return p, nil
}

// ExtrapolateFor projects the selected stored records through target.
func (e *Engine) ExtrapolateFor(ctx context.Context, sel Selection, target time.Time) (extrapolate.Projection, error) {
	items, err := e.LoadSelection(ctx, sel)
	if err != nil {
		return extrapolate.Projection{}, err
	}
	return e.Extrapolate(items, target)
}
