package stats

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedPayload = errors.New("malformed metrics payload")

var validate = validator.New()

// The wire types use pointers so that a missing field is told apart from a zero value.
type wirePayload struct {
	LiveStats       *wireLiveStats       `json:"liveStats"       validate:"required"`
	SystemMetrics   *wireSystemMetrics   `json:"systemMetrics"   validate:"required"`
	Sustainability  *wireSustainability  `json:"sustainability"  validate:"required"`
	ComparisonStats *wireComparisonStats `json:"comparisonStats" validate:"omitempty"`
}

type wireLiveStats struct {
	ActiveComparisons *int     `json:"activeComparisons" validate:"required,gte=0"`
	QueueLength       *int     `json:"queueLength"       validate:"required,gte=0"`
	SystemLoad        *float64 `json:"systemLoad"        validate:"required,gte=0,lte=100"`
	CarbonFootprint   *float64 `json:"carbonFootprint"   validate:"required,gte=0"`
	EnergyConsumption *float64 `json:"energyConsumption" validate:"required,gte=0"`
	Uptime            *float64 `json:"uptime"            validate:"required,gte=0,lte=100"`
	ResponseTime      *float64 `json:"responseTime"      validate:"required,gte=0"`
	ErrorRate         *float64 `json:"errorRate"         validate:"required,gte=0,lte=5"`
}

type wireSystemMetrics struct {
	CPUUsage          *float64 `json:"cpuUsage"          validate:"required,gte=0,lte=100"`
	GPUUsage          *float64 `json:"gpuUsage"          validate:"required,gte=0,lte=100"`
	MemoryUsage       *float64 `json:"memoryUsage"       validate:"required,gte=0,lte=100"`
	NetworkLatency    *float64 `json:"networkLatency"    validate:"required,gte=10,lte=100"`
	ActiveConnections *int     `json:"activeConnections" validate:"required,gte=1,lte=50"`
}

type wireSustainability struct {
	TotalCarbonSaved     *float64 `json:"totalCarbonSaved"     validate:"required,gte=0"`
	GreenScore           *float64 `json:"greenScore"           validate:"required,gte=0"`
	EnergyEfficiency     *float64 `json:"energyEfficiency"     validate:"required,gte=0"`
	RenewableEnergyUsage *float64 `json:"renewableEnergyUsage" validate:"required,gte=0"`
	CarbonOffset         *float64 `json:"carbonOffset"         validate:"required,gte=0"`
}

type wireComparisonStats struct {
	AverageAccuracy *float64 `json:"averageAccuracy" validate:"required,gte=0"`
	AverageSpeed    *float64 `json:"averageSpeed"    validate:"required,gte=0"`
}

// DecodePayload parses a live endpoint body and rejects anything that does not
// match the expected shape and ranges.
func DecodePayload(data []byte) (Payload, error) {
	var w wirePayload
	if err := json.Unmarshal(data, &w); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if err := validate.Struct(w); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	p := Payload{
		LiveStats: LiveStats{
			ActiveComparisons: *w.LiveStats.ActiveComparisons,
			QueueLength:       *w.LiveStats.QueueLength,
			SystemLoad:        *w.LiveStats.SystemLoad,
			CarbonFootprint:   *w.LiveStats.CarbonFootprint,
			EnergyConsumption: *w.LiveStats.EnergyConsumption,
			Uptime:            *w.LiveStats.Uptime,
			ResponseTime:      *w.LiveStats.ResponseTime,
			ErrorRate:         *w.LiveStats.ErrorRate,
		},
		SystemMetrics: SystemMetrics{
			CPUUsage:          *w.SystemMetrics.CPUUsage,
			GPUUsage:          *w.SystemMetrics.GPUUsage,
			MemoryUsage:       *w.SystemMetrics.MemoryUsage,
			NetworkLatency:    *w.SystemMetrics.NetworkLatency,
			ActiveConnections: *w.SystemMetrics.ActiveConnections,
		},
		Sustainability: Sustainability{
			TotalCarbonSaved:     *w.Sustainability.TotalCarbonSaved,
			GreenScore:           *w.Sustainability.GreenScore,
			EnergyEfficiency:     *w.Sustainability.EnergyEfficiency,
			RenewableEnergyUsage: *w.Sustainability.RenewableEnergyUsage,
			CarbonOffset:         *w.Sustainability.CarbonOffset,
		},
	}
	if w.ComparisonStats != nil {
		p.ComparisonStats = &ComparisonStats{
			AverageAccuracy: *w.ComparisonStats.AverageAccuracy,
			AverageSpeed:    *w.ComparisonStats.AverageSpeed,
		}
	}

	return p, nil
}
