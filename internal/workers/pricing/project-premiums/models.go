// internal/workers/pricing/project-premiums/models.go
package projectpremiums

import "premium-service/internal/models"

// Input is read from the process variables. It carries the same fields as
// the HTTP request body.
type Input struct {
	Company       string            `json:"company"`
	PlanFileName  string            `json:"planFileName"`
	Age           models.CoercedInt `json:"age"`
	PlanOption    string            `json:"planOption"`
	NumberOfYears models.CoercedInt `json:"numberOfYears"`
}

func (in *Input) request() *models.CalculationRequest {
	return &models.CalculationRequest{
		Company:       in.Company,
		PlanFileName:  in.PlanFileName,
		Age:           in.Age,
		PlanOption:    in.PlanOption,
		NumberOfYears: in.NumberOfYears,
	}
}

type Output struct {
	Projection []models.ProjectionRecord `json:"projection"`
	YearCount  int                       `json:"yearCount"`
}
