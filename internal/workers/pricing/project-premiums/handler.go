// internal/workers/pricing/project-premiums/handler.go
package projectpremiums

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"

	"premium-service/internal/common/errors"
	"premium-service/internal/common/logger"
	"premium-service/internal/common/metrics"
	"premium-service/internal/common/validation"
	"premium-service/internal/models"
)

const TaskType = "project-premiums"

// Projector computes the premium schedule for one request.
type Projector interface {
	Project(ctx context.Context, req *models.CalculationRequest) ([]models.ProjectionRecord, error)
}

type Handler struct {
	config       *Config
	projector    Projector
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, projector Projector, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		projector:    projector,
		schema:       validation.MustSchema(validation.CalculationRequestSchema),
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		metrics.ProjectionsFailed.WithLabelValues(metrics.TransportWorker, string(errors.AsStandardError(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// parseInput validates the job variables against the request schema before
// decoding them into Input.
func (h *Handler) parseInput(variables string) (*Input, error) {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return nil, errors.NewInvalidRequestBodyError([]string{err.Error()})
	}
	if result := h.schema.ValidateInput(vars); !result.Valid {
		return nil, errors.NewInvalidRequestBodyError(result.GetErrorMessages())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidRequestBodyError([]string{err.Error()})
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidParametersError("input cannot be nil")
	}

	start := time.Now()
	metrics.ProjectionsActive.WithLabelValues(metrics.TransportWorker).Inc()
	defer metrics.ProjectionsActive.WithLabelValues(metrics.TransportWorker).Dec()

	records, err := h.projector.Project(ctx, input.request())
	metrics.ProjectionDuration.WithLabelValues(metrics.TransportWorker).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProjectionsFailed.WithLabelValues(metrics.TransportWorker, string(errors.AsStandardError(err).Code)).Inc()
		return nil, err
	}
	metrics.ProjectionsCompleted.WithLabelValues(metrics.TransportWorker).Inc()

	h.logger.Info("premiums projected", map[string]interface{}{
		"company":      input.Company,
		"planFileName": input.PlanFileName,
		"planOption":   input.PlanOption,
		"age":          input.Age.Int(),
		"years":        len(records),
	})

	return &Output{
		Projection: records,
		YearCount:  len(records),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
