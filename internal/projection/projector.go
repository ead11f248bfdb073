// Package projection turns a stored price table into a year-by-year premium
// schedule running from the enrollee's current age through MaxAge.
package projection

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"premium-service/internal/common/errors"
	"premium-service/internal/common/logger"
	"premium-service/internal/models"
	"premium-service/internal/plans"
)

// MaxAge is the last age included in every projection.
const MaxAge = 100

// Projector is stateless; one instance serves concurrent requests.
type Projector struct {
	store  plans.Store
	tracer trace.Tracer
	logger logger.Logger
}

// NewProjector falls back to a no-op tracer when tracer is nil.
func NewProjector(store plans.Store, tracer trace.Tracer, log logger.Logger) *Projector {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("premium-service")
	}
	return &Projector{
		store:  store,
		tracer: tracer,
		logger: log.WithFields(map[string]interface{}{"component": "projector"}),
	}
}

// Project loads the plan's price table and resolves one record per year.
// It returns either every record or an error, never a prefix.
func (p *Projector) Project(ctx context.Context, req *models.CalculationRequest) ([]models.ProjectionRecord, error) {
	if req == nil {
		return nil, errors.NewInvalidParametersError("request cannot be nil")
	}

	ctx, span := p.tracer.Start(ctx, "premium.project", trace.WithAttributes(
		attribute.String("plan.company", req.Company),
		attribute.String("plan.file", req.PlanFileName),
		attribute.String("plan.option", req.PlanOption),
		attribute.Int("enrollee.age", req.Age.Int()),
	))
	defer span.End()

	table, err := p.store.Load(ctx, req.Company, req.PlanFileName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan load failed")
		return nil, err
	}

	records, err := Schedule(table, req.PlanOption, req.Age.Int())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "premium lookup failed")
		return nil, err
	}

	if n := req.NumberOfYears.Int(); n != 0 && n != len(records) {
		p.logger.Debug("numberOfYears does not bound the projection", map[string]interface{}{
			"numberOfYears": n,
			"horizon":       len(records),
		})
	}

	span.SetAttributes(attribute.Int("projection.years", len(records)))
	return records, nil
}

// Horizon is the number of projected years for an enrollee of the given age.
// It is never less than one.
func Horizon(age int) int {
	return max(MaxAge-age+1, 1)
}

// Schedule resolves the premium for each year from age onward. A missing
// plan option or a missing age anywhere in the range fails the whole schedule.
func Schedule(table models.PriceTable, planOption string, age int) ([]models.ProjectionRecord, error) {
	premiums, ok := table[planOption]
	if !ok {
		return nil, errors.NewInvalidParametersError(fmt.Sprintf("'%s'", planOption))
	}

	horizon := Horizon(age)
	// A table can back at most len(premiums) years; any longer horizon fails
	// on a missing age before the slice has to grow past that.
	records := make([]models.ProjectionRecord, 0, min(horizon, len(premiums)))
	for year := 1; year <= horizon; year++ {
		currentAge := age + year - 1
		premium, ok := premiums[strconv.Itoa(currentAge)]
		if !ok {
			return nil, errors.NewPremiumNotFoundError(planOption, currentAge)
		}
		records = append(records, models.ProjectionRecord{
			YearNumber:     year,
			Age:            currentAge,
			MedicalPremium: premium,
		})
	}
	return records, nil
}
