package stats

// LiveStats are the operational counters shown on the dashboard header.
type LiveStats struct {
	ActiveComparisons int     `json:"activeComparisons"`
	QueueLength       int     `json:"queueLength"`
	SystemLoad        float64 `json:"systemLoad"`
	CarbonFootprint   float64 `json:"carbonFootprint"`
	EnergyConsumption float64 `json:"energyConsumption"`
	Uptime            float64 `json:"uptime"`
	ResponseTime      float64 `json:"responseTime"`
	ErrorRate         float64 `json:"errorRate"`
}

// SystemMetrics are host resource figures.
type SystemMetrics struct {
	CPUUsage          float64 `json:"cpuUsage"`
	GPUUsage          float64 `json:"gpuUsage"`
	MemoryUsage       float64 `json:"memoryUsage"`
	NetworkLatency    float64 `json:"networkLatency"`
	ActiveConnections int     `json:"activeConnections"`
}

type Sustainability struct {
	TotalCarbonSaved     float64 `json:"totalCarbonSaved"`
	GreenScore           float64 `json:"greenScore"`
	EnergyEfficiency     float64 `json:"energyEfficiency"`
	RenewableEnergyUsage float64 `json:"renewableEnergyUsage"`
	CarbonOffset         float64 `json:"carbonOffset"`
}

type ComparisonStats struct {
	AverageAccuracy float64 `json:"averageAccuracy"`
	AverageSpeed    float64 `json:"averageSpeed"`
}

// Payload is the body served by the live metrics endpoint.
type Payload struct {
	LiveStats       LiveStats        `json:"liveStats"`
	SystemMetrics   SystemMetrics    `json:"systemMetrics"`
	Sustainability  Sustainability   `json:"sustainability"`
	ComparisonStats *ComparisonStats `json:"comparisonStats,omitempty"`
}

// Value ranges of the simulated and validated fields.
const (
	MaxPercent    = 100.0
	MaxErrorRate  = 5.0
	MinLatency    = 10.0
	MaxLatency    = 100.0
	MinConns      = 1
	MaxConns      = 50
	MinRespTimeMs = 50.0
)

func DefaultLiveStats() LiveStats {
	return LiveStats{
		ActiveComparisons: 12,
		QueueLength:       5,
		SystemLoad:        67,
		CarbonFootprint:   2.4,
		EnergyConsumption: 45.2,
		Uptime:            99.8,
		ResponseTime:      245,
		ErrorRate:         0.2,
	}
}

func DefaultSystemMetrics() SystemMetrics {
	return SystemMetrics{
		CPUUsage:          74.79,
		GPUUsage:          86.42,
		MemoryUsage:       79.38,
		NetworkLatency:    35.22,
		ActiveConnections: 14,
	}
}

func DefaultSustainability() Sustainability {
	return Sustainability{
		TotalCarbonSaved:     12.8,
		GreenScore:           87,
		EnergyEfficiency:     92,
		RenewableEnergyUsage: 78,
		CarbonOffset:         8.5,
	}
}

// DefaultComparisonStats is shown when the live source omits comparison figures.
func DefaultComparisonStats() ComparisonStats {
	return ComparisonStats{
		AverageAccuracy: 89.2,
		AverageSpeed:    85.5,
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func ClampInt(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
