// internal/workers/pricing/project-premiums/handler_test.go
package projectpremiums

import (
	"context"
	stderrors "errors"
	"math"
	"strconv"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premium-service/internal/common/config"
	"premium-service/internal/common/errors"
	"premium-service/internal/common/logger"
	"premium-service/internal/models"
	"premium-service/internal/projection"
)

// ==========================
// Test Helper Functions
// ==========================

type tableStore struct {
	table models.PriceTable
	err   error
}

func (s *tableStore) Load(_ context.Context, _, _ string) (models.PriceTable, error) {
	return s.table, s.err
}

func silverTable() models.PriceTable {
	ages := models.AgePremiums{}
	for age := 60; age <= 100; age++ {
		ages[strconv.Itoa(age)] = models.MustPremium(strconv.Itoa(500+age) + ".50")
	}
	return models.PriceTable{"Silver": ages}
}

func createTestInput(age int, option string) *Input {
	return &Input{
		Company:       "acme",
		PlanFileName:  "silver-2025",
		Age:           models.CoercedInt(age),
		PlanOption:    option,
		NumberOfYears: 5,
	}
}

func createTestHandler(t *testing.T, store *tableStore) *Handler {
	log := logger.NewTestLogger(t)
	projector := projection.NewProjector(store, nil, log)
	return NewHandler(createTestConfig(), projector, log)
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func codeOf(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %T", err)
	return stdErr.Code
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler := createTestHandler(t, &tableStore{table: silverTable()})

	output, err := handler.Execute(context.Background(), createTestInput(95, "Silver"))
	require.NoError(t, err)

	assert.Equal(t, 6, output.YearCount)
	require.Len(t, output.Projection, 6)
	assert.Equal(t, 1, output.Projection[0].YearNumber)
	assert.Equal(t, 95, output.Projection[0].Age)
	assert.Equal(t, "595.5", output.Projection[0].MedicalPremium.String())
	assert.Equal(t, 100, output.Projection[5].Age)
}

func TestHandler_Execute_OutputVariables(t *testing.T) {
	handler := createTestHandler(t, &tableStore{table: silverTable()})

	output, err := handler.Execute(context.Background(), createTestInput(100, "Silver"))
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"projection":[{"yearNumber":1,"age":100,"medicalPremium":600.50}],"yearCount":1}`, string(data))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		store     *tableStore
		input     *Input
		code      errors.ErrorCode
		retryable bool
	}{
		{
			name:  "age outside table",
			store: &tableStore{table: silverTable()},
			input: createTestInput(59, "Silver"),
			code:  errors.ErrCodePremiumNotFound,
		},
		{
			name:  "unknown option",
			store: &tableStore{table: silverTable()},
			input: createTestInput(60, "Gold"),
			code:  errors.ErrCodeInvalidParameters,
		},
		{
			name:  "plan missing",
			store: &tableStore{err: errors.NewPlanDataNotFoundError("acme/silver-2025.json")},
			input: createTestInput(60, "Silver"),
			code:  errors.ErrCodePlanDataNotFound,
		},
		{
			name:      "plan unreadable",
			store:     &tableStore{err: errors.NewPlanDataUnreadableError("acme/silver-2025.json", stderrors.New("permission denied"))},
			input:     createTestInput(60, "Silver"),
			code:      errors.ErrCodePlanDataUnreadable,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.store)

			output, err := handler.Execute(context.Background(), tt.input)
			assert.Nil(t, output)
			require.Error(t, err)

			code := codeOf(t, err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.retryable, errors.IsRetryableErrorCode(code))
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	handler := createTestHandler(t, &tableStore{table: silverTable()})

	_, err := handler.Execute(context.Background(), nil)
	assert.Equal(t, errors.ErrCodeInvalidParameters, codeOf(t, err))
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t, &tableStore{})

	input, err := handler.parseInput(`{"company":"acme","planFileName":"silver-2025","age":"61","planOption":"Silver","numberOfYears":40,"processStarter":"ops"}`)
	require.NoError(t, err)
	assert.Equal(t, 61, input.Age.Int())
	assert.Equal(t, "Silver", input.PlanOption)

	_, err = handler.parseInput(`{"company":"acme","planOption":"Silver"}`)
	assert.Equal(t, errors.ErrCodeInvalidRequestBody, codeOf(t, err))

	_, err = handler.parseInput(`not json`)
	assert.Equal(t, errors.ErrCodeInvalidRequestBody, codeOf(t, err))

	_, err = handler.parseInput(`null`)
	assert.Equal(t, errors.ErrCodeInvalidRequestBody, codeOf(t, err))

	_, err = handler.parseInput(`{"company":"acme","planFileName":"silver-2025","age":61.5,"planOption":"Silver","numberOfYears":1}`)
	assert.Equal(t, errors.ErrCodeInvalidRequestBody, codeOf(t, err))
}

func TestHandler_Execute_ExtremeNegativeAge(t *testing.T) {
	handler := createTestHandler(t, &tableStore{table: silverTable()})

	output, err := handler.Execute(context.Background(), createTestInput(math.MinInt32, "Silver"))
	assert.Nil(t, output)
	assert.Equal(t, errors.ErrCodePremiumNotFound, codeOf(t, err))
}

func TestConfigFromWorker(t *testing.T) {
	assert.Equal(t, 30*time.Second, ConfigFromWorker(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2*time.Second, ConfigFromWorker(config.WorkerConfig{Timeout: 2000}).Timeout)
}
