package simulator_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/absmach/greenboard/pkg/stats"
	"github.com/absmach/greenboard/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	clocktesting "k8s.io/utils/clock/testing"
)

type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) IntN(n int) int { return min(r.n, n-1) }

func TestStepBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc   string
		rng    simulator.Rand
		live   stats.LiveStats
		system stats.SystemMetrics
	}{
		{
			desc:   "maximum upward draws at upper bounds",
			rng:    fixedRand{f: 0.999999, n: 2},
			live:   stats.LiveStats{SystemLoad: 100, ErrorRate: 5, ResponseTime: 50},
			system: stats.SystemMetrics{CPUUsage: 100, GPUUsage: 100, MemoryUsage: 100, NetworkLatency: 100, ActiveConnections: 50},
		},
		{
			desc:   "maximum downward draws at lower bounds",
			rng:    fixedRand{f: 0, n: 0},
			live:   stats.LiveStats{},
			system: stats.SystemMetrics{NetworkLatency: 10, ActiveConnections: 1},
		},
		{
			desc:   "random draws from defaults",
			rng:    rand.New(rand.NewPCG(1, 2)),
			live:   stats.DefaultLiveStats(),
			system: stats.DefaultSystemMetrics(),
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			live, system := tc.live, tc.system
			for range 2000 {
				live = simulator.StepLive(live, tc.rng)
				system = simulator.StepSystem(system, tc.rng)

				assert.GreaterOrEqual(t, live.ActiveComparisons, 0)
				assert.GreaterOrEqual(t, live.QueueLength, 0)
				assert.True(t, live.SystemLoad >= 0 && live.SystemLoad <= 100, "systemLoad %v", live.SystemLoad)
				assert.GreaterOrEqual(t, live.CarbonFootprint, 0.0)
				assert.GreaterOrEqual(t, live.EnergyConsumption, 0.0)
				assert.GreaterOrEqual(t, live.ResponseTime, 0.0)
				assert.True(t, live.ErrorRate >= 0 && live.ErrorRate <= 5, "errorRate %v", live.ErrorRate)

				assert.True(t, system.CPUUsage >= 0 && system.CPUUsage <= 100, "cpu %v", system.CPUUsage)
				assert.True(t, system.GPUUsage >= 0 && system.GPUUsage <= 100, "gpu %v", system.GPUUsage)
				assert.True(t, system.MemoryUsage >= 0 && system.MemoryUsage <= 100, "memory %v", system.MemoryUsage)
				assert.True(t, system.NetworkLatency >= 10 && system.NetworkLatency <= 100, "latency %v", system.NetworkLatency)
				assert.True(t, system.ActiveConnections >= 1 && system.ActiveConnections <= 50, "conns %d", system.ActiveConnections)
			}
		})
	}
}

func TestStepLiveKeepsUptime(t *testing.T) {
	t.Parallel()

	prev := stats.DefaultLiveStats()
	next := simulator.StepLive(prev, fixedRand{f: 0.9, n: 2})

	assert.Equal(t, prev.Uptime, next.Uptime)
	assert.Equal(t, prev.ActiveComparisons+1, next.ActiveComparisons)
	assert.InDelta(t, prev.SystemLoad+4, next.SystemLoad, 1e-9)
}

func TestSimulatorTicksIndependently(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clocktesting.NewFakeClock(time.Now())
	sim := simulator.New(clk, simulator.WithRand(fixedRand{f: 0.75, n: 2}))

	require.True(t, sim.Start())
	require.False(t, sim.Start())
	defer sim.Stop()

	live0, system0, sustain0 := sim.Snapshot()

	clk.Step(simulator.DefSystemPeriod)
	assert.Eventually(t, func() bool {
		_, system, _ := sim.Snapshot()

		return system != system0
	}, time.Second, 5*time.Millisecond)

	live, _, _ := sim.Snapshot()
	assert.Equal(t, live0, live, "live stats tick on their own period")

	clk.Step(simulator.DefLivePeriod - simulator.DefSystemPeriod)
	assert.Eventually(t, func() bool {
		live, _, _ := sim.Snapshot()

		return live != live0
	}, time.Second, 5*time.Millisecond)

	_, _, sustain := sim.Snapshot()
	assert.Equal(t, sustain0, sustain, "sustainability never drifts")
}

func TestSimulatorStopFreezesAndResumes(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clocktesting.NewFakeClock(time.Now())
	sim := simulator.New(clk,
		simulator.WithRand(fixedRand{f: 0.75, n: 2}),
		simulator.WithPeriods(time.Second, time.Second),
	)

	require.True(t, sim.Start())
	clk.Step(time.Second)
	assert.Eventually(t, func() bool {
		live, _, _ := sim.Snapshot()

		return live.ActiveComparisons == stats.DefaultLiveStats().ActiveComparisons+1
	}, time.Second, 5*time.Millisecond)

	require.True(t, sim.Stop())
	require.False(t, sim.Stop())
	assert.False(t, sim.Running())

	frozenLive, frozenSystem, _ := sim.Snapshot()
	clk.Step(10 * time.Second)
	live, system, _ := sim.Snapshot()
	assert.Equal(t, frozenLive, live)
	assert.Equal(t, frozenSystem, system)

	require.True(t, sim.Start())
	clk.Step(time.Second)
	assert.Eventually(t, func() bool {
		live, _, _ := sim.Snapshot()

		return live.ActiveComparisons == frozenLive.ActiveComparisons+1
	}, time.Second, 5*time.Millisecond, "resumes from the last values, not the defaults")
	require.True(t, sim.Stop())
}
