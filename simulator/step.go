package simulator

import "github.com/absmach/greenboard/pkg/stats"

// Walk magnitudes per field: a delta is drawn uniformly from [-m/2, m/2).
const (
	loadSpan     = 10.0
	carbonSpan   = 0.5
	energySpan   = 2.0
	responseSpan = 50.0
	errorSpan    = 0.5
	cpuSpan      = 10.0
	gpuSpan      = 8.0
	memorySpan   = 6.0
	latencySpan  = 20.0
)

// StepLive returns prev advanced by one bounded random step. Uptime does not drift.
func StepLive(prev stats.LiveStats, r Rand) stats.LiveStats {
	next := prev
	next.ActiveComparisons = max(0, prev.ActiveComparisons+unitStep(r))
	next.QueueLength = max(0, prev.QueueLength+unitStep(r))
	next.SystemLoad = stats.Clamp(prev.SystemLoad+delta(r, loadSpan), 0, stats.MaxPercent)
	next.CarbonFootprint = max(0, prev.CarbonFootprint+delta(r, carbonSpan))
	next.EnergyConsumption = max(0, prev.EnergyConsumption+delta(r, energySpan))
	next.ResponseTime = max(stats.MinRespTimeMs, prev.ResponseTime+delta(r, responseSpan))
	next.ErrorRate = stats.Clamp(prev.ErrorRate+delta(r, errorSpan), 0, stats.MaxErrorRate)

	return next
}

// StepSystem returns prev advanced by one bounded random step.
func StepSystem(prev stats.SystemMetrics, r Rand) stats.SystemMetrics {
	return stats.SystemMetrics{
		CPUUsage:          stats.Clamp(prev.CPUUsage+delta(r, cpuSpan), 0, stats.MaxPercent),
		GPUUsage:          stats.Clamp(prev.GPUUsage+delta(r, gpuSpan), 0, stats.MaxPercent),
		MemoryUsage:       stats.Clamp(prev.MemoryUsage+delta(r, memorySpan), 0, stats.MaxPercent),
		NetworkLatency:    stats.Clamp(prev.NetworkLatency+delta(r, latencySpan), stats.MinLatency, stats.MaxLatency),
		ActiveConnections: stats.ClampInt(prev.ActiveConnections+unitStep(r), stats.MinConns, stats.MaxConns),
	}
}

func delta(r Rand, span float64) float64 {
	return (r.Float64() - 0.5) * span
}

// unitStep is one of -1, 0 or +1.
func unitStep(r Rand) int {
	return r.IntN(3) - 1
}
