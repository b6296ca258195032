package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/goliatone/go-carvalue/pkg/estimator"
	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/record"
)

// ErrNoModelSource is reported when the orchestrator has no model configured.
var ErrNoModelSource = errors.New("orchestrator: no model source configured")

// Estimate harvests values in schema order, runs the model and formats the
// result. It never returns an error: every failure is carried in the returned
// Estimate as a user-facing message. The record is returned for callers that
// echo or store it; it is empty when harvesting failed.
func (o *Orchestrator) Estimate(ctx context.Context, values url.Values) (record.Record, model.Estimate) {
	ctx, span := o.tracer.Start(ctx, "carvalue.estimate")
	defer span.End()

	rec, estimate := o.estimate(ctx, values)

	span.SetAttributes(
		attribute.Int("carvalue.columns", rec.Len()),
		attribute.Bool("carvalue.ok", estimate.OK()),
	)
	if !estimate.OK() {
		span.SetAttributes(attribute.String("carvalue.error_kind", string(estimate.ErrorKind)))
		span.SetStatus(codes.Error, estimate.Error)
	}

	if o.recorder != nil && estimate.OK() {
		if err := o.recorder.RecordEstimate(ctx, rec, estimate); err != nil {
			o.logger.Warn("estimate not recorded", "error", err)
		}
	}
	return rec, estimate
}

func (o *Orchestrator) estimate(ctx context.Context, values url.Values) (record.Record, model.Estimate) {
	if err := o.initialiseErr; err != nil {
		return record.Record{}, failure(model.ErrorKindModelUnavailable, predictionMessage(err), "")
	}
	if o.models == nil {
		o.logger.Warn("prediction without model", "error", ErrNoModelSource)
		return record.Record{}, failure(model.ErrorKindModelUnavailable, modelMessage(ErrNoModelSource), "")
	}

	m, err := o.models.Model(ctx)
	if err == nil && m == nil {
		err = fmt.Errorf("%w: model source returned no model", estimator.ErrModelInvalid)
	}
	if err != nil {
		o.logger.Warn("model unavailable", "error", err)
		return record.Record{}, failure(model.ErrorKindModelUnavailable, modelMessage(err), "")
	}

	harvestOptions := []record.Option{record.WithBaseYear(o.baseYear)}
	if o.deriveFields {
		harvestOptions = append(harvestOptions, record.WithDerivedFields())
	}
	rec, err := record.Harvest(o.schema, values, harvestOptions...)
	if err != nil {
		var coercion *record.CoercionError
		field := ""
		if errors.As(err, &coercion) {
			field = coercion.Field
		}
		o.logger.Warn("submission rejected", "field", field, "error", err)
		return record.Record{}, failure(model.ErrorKindInput, predictionMessage(err), field)
	}

	price, err := predict(ctx, m, rec)
	if err != nil {
		o.logger.Warn("prediction failed", "error", err)
		estimate := failure(model.ErrorKindPrediction, predictionMessage(err), "")
		estimate.Details = o.details(rec)
		return rec, estimate
	}

	return rec, model.Estimate{
		Prediction: price,
		Formatted:  o.formatter.Currency(price),
		Details:    o.details(rec),
	}
}

func predict(ctx context.Context, m estimator.Model, rec record.Record) (price float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()
	return m.Predict(ctx, rec)
}

func (o *Orchestrator) details(rec record.Record) []model.Detail {
	out := make([]model.Detail, 0, rec.Len())
	rec.Each(func(name string, v record.Value) bool {
		label := name
		if field, ok := o.schema.Field(name); ok && field.Label != "" {
			label = field.Label
		}
		out = append(out, model.Detail{Name: name, Label: label, Value: v.String()})
		return true
	})
	return out
}

func failure(kind model.ErrorKind, message, field string) model.Estimate {
	return model.Estimate{Error: message, ErrorKind: kind, Field: field}
}

func predictionMessage(err error) string {
	return "Prediction Error: " + err.Error()
}

func modelMessage(err error) string {
	name := "model.json"
	var loadErr *estimator.LoadError
	if errors.As(err, &loadErr) && loadErr.Path != "" {
		name = filepath.Base(loadErr.Path)
	}
	switch {
	case errors.Is(err, estimator.ErrModelNotFound), errors.Is(err, ErrNoModelSource):
		return fmt.Sprintf("Model file not found. Please upload %s.", name)
	case errors.Is(err, estimator.ErrModelInvalid):
		return fmt.Sprintf("Model file could not be loaded. Please upload a valid %s.", name)
	default:
		return "Model unavailable: " + err.Error()
	}
}
