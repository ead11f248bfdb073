package api

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"premium-service/internal/common/errors"
	"premium-service/internal/common/metrics"
	"premium-service/internal/common/validation"
	"premium-service/internal/models"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string                       `json:"detail"`
	Code   string                       `json:"code"`
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleGetData(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	metrics.ProjectionsActive.WithLabelValues(metrics.TransportHTTP).Inc()
	defer metrics.ProjectionsActive.WithLabelValues(metrics.TransportHTTP).Dec()

	body := ctx.PostBody()
	if result := s.schema.ValidateBytes(body); !result.Valid {
		s.fail(ctx, start, errors.NewInvalidRequestBodyError(result.GetErrorMessages()), result.Errors)
		return
	}

	var req models.CalculationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(ctx, start, errors.NewInvalidRequestBodyError([]string{err.Error()}), nil)
		return
	}

	log := s.logger.WithFields(map[string]interface{}{
		"requestId":    requestID(ctx),
		"company":      req.Company,
		"planFileName": req.PlanFileName,
		"planOption":   req.PlanOption,
		"age":          req.Age.Int(),
	})
	log.Debug("projection requested", nil)

	records, err := s.projector.Project(ctx, &req)
	if err != nil {
		s.fail(ctx, start, err, nil)
		return
	}

	metrics.ProjectionsCompleted.WithLabelValues(metrics.TransportHTTP).Inc()
	metrics.ProjectionDuration.WithLabelValues(metrics.TransportHTTP).Observe(time.Since(start).Seconds())
	s.obs.RecordProjection(ctx, "success")
	s.obs.RecordProjectionDuration(ctx, time.Since(start), "success")

	log.Info("projection completed", map[string]interface{}{"years": len(records)})
	writeJSON(ctx, fasthttp.StatusOK, records)
}

// fail maps err onto its HTTP status and records it.
func (s *Server) fail(ctx *fasthttp.RequestCtx, start time.Time, err error, problems []validation.ValidationError) {
	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr.Code)

	metrics.ProjectionsFailed.WithLabelValues(metrics.TransportHTTP, string(stdErr.Code)).Inc()
	metrics.ProjectionDuration.WithLabelValues(metrics.TransportHTTP).Observe(time.Since(start).Seconds())
	s.obs.RecordProjection(ctx, string(stdErr.Code))
	s.obs.RecordProjectionDuration(ctx, time.Since(start), string(stdErr.Code))

	fields := map[string]interface{}{
		"requestId": requestID(ctx),
		"errorCode": string(stdErr.Code),
		"status":    status,
		"details":   stdErr.Details,
		"category":  errors.GetErrorCategory(stdErr.Code),
	}
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("projection failed", fields)
	} else {
		s.logger.Warn("projection rejected", fields)
	}

	writeJSON(ctx, status, ErrorResponse{
		Detail: stdErr.Message,
		Code:   string(stdErr.Code),
		Errors: problems,
	})
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, statusResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(ctx *fasthttp.RequestCtx) {
	if err := s.ready(); err != nil {
		writeJSON(ctx, fasthttp.StatusServiceUnavailable, statusResponse{
			Status: "not ready",
			Time:   time.Now().UTC().Format(time.RFC3339),
			Error:  err.Error(),
		})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, statusResponse{
		Status: "ready",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"detail":"failed to encode response","code":"INTERNAL_ERROR"}`)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeDetail(ctx *fasthttp.RequestCtx, status int, code, detail string) {
	writeJSON(ctx, status, ErrorResponse{Detail: detail, Code: code})
}
